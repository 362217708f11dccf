package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/models"
)

var (
	phoneRe = regexp.MustCompile(`^(?:\+251[79]\d{8}|0[79]\d{8})$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

const (
	minNameLen    = 3
	minAddressLen = 10
	MinSearchLen  = 2
)

func ValidateName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < minNameLen {
		return "", fmt.Errorf("%w: name must be at least %d characters", domain.ErrValidation, minNameLen)
	}
	return s, nil
}

// ValidatePhone strips spaces and dashes before matching.
func ValidatePhone(s string) (string, error) {
	s = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	if !phoneRe.MatchString(s) {
		return "", fmt.Errorf("%w: phone must look like +2519XXXXXXXX or 09XXXXXXXX", domain.ErrValidation)
	}
	return s, nil
}

func ValidateAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < minAddressLen {
		return "", fmt.Errorf("%w: address must be at least %d characters", domain.ErrValidation, minAddressLen)
	}
	return s, nil
}

// ValidateEmail accepts an empty value; email is optional.
func ValidateEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if !emailRe.MatchString(s) {
		return "", fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	return s, nil
}

func ValidateBuyer(b models.BuyerSnapshot) (models.BuyerSnapshot, error) {
	var err error
	if b.Name, err = ValidateName(b.Name); err != nil {
		return b, err
	}
	if b.Phone, err = ValidatePhone(b.Phone); err != nil {
		return b, err
	}
	if b.Address, err = ValidateAddress(b.Address); err != nil {
		return b, err
	}
	if b.Email, err = ValidateEmail(b.Email); err != nil {
		return b, err
	}
	return b, nil
}

func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	return n, nil
}

func ValidateKeyword(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < MinSearchLen {
		return "", fmt.Errorf("%w: search needs at least %d characters", domain.ErrValidation, MinSearchLen)
	}
	return s, nil
}
