package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ", "book")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"", "abc", "0", "-3", "4.5"} {
		_, err := ParseID(raw, "book")
		assert.ErrorIs(t, err, ErrValidation, "input %q", raw)
	}
}

func TestParseYear(t *testing.T) {
	year, err := ParseYear("2023")
	require.NoError(t, err)
	assert.Equal(t, 2023, year)

	_, err = ParseYear("twenty")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckTitle(t *testing.T) {
	assert.NoError(t, CheckTitle("Dune"))
	assert.ErrorIs(t, CheckTitle(""), ErrValidation)

	err := CheckTitle(strings.Repeat("x", 256))
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "book title cannot be longer than 255 characters")
}
