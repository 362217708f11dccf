package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

func TestValidatePhone(t *testing.T) {
	for _, ok := range []string{"+251911223344", "0911223344", "0711 22 33 44", "+251-7-1122-3344"} {
		_, err := ValidatePhone(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "12345", "+251811223344", "091122334", "+1 555 0100"} {
		_, err := ValidatePhone(bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}

	got, err := ValidatePhone("09 11-22 33 44")
	require.NoError(t, err)
	assert.Equal(t, "0911223344", got)
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ValidateEmail("abebe@example.com")
	assert.NoError(t, err)

	_, err = ValidateEmail("not-an-email")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateBuyer(t *testing.T) {
	b, err := ValidateBuyer(models.BuyerSnapshot{
		Name:    "  Abebe Kebede ",
		Phone:   "0911 223344",
		Address: "Bole Road, Addis Ababa",
	})
	require.NoError(t, err)
	assert.Equal(t, "Abebe Kebede", b.Name)
	assert.Equal(t, "0911223344", b.Phone)

	_, err = ValidateBuyer(models.BuyerSnapshot{Name: "Ab", Phone: "0911223344", Address: "Bole Road, Addis"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ValidateBuyer(models.BuyerSnapshot{Name: "Abebe", Phone: "0911223344", Address: "short"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, bad := range []string{"0", "-2", "two", "1.5", ""} {
		_, err := ParseQuantity(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, bad)
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}
}
