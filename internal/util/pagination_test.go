package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		page, size  int
		from, limit int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 0, 0, DefaultPageSize},
		{2, 500, DefaultPageSize, DefaultPageSize},
	}
	for _, c := range cases {
		from, limit := Calculate(c.page, c.size)
		assert.Equal(t, c.from, from, "page=%d size=%d", c.page, c.size)
		assert.Equal(t, c.limit, limit, "page=%d size=%d", c.page, c.size)
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}
