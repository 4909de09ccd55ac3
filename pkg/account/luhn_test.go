package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuhnCheckDigit(t *testing.T) {
	tests := []struct {
		digits string
		want   byte
	}{
		{"49015420323751", '8'},
		{"00000000000000", '0'},
		{"11111111111111", '9'},
	}

	for _, tt := range tests {
		got, ok := luhnCheckDigit(tt.digits)
		assert.True(t, ok, "digits %q", tt.digits)
		assert.Equal(t, tt.want, got, "digits %q", tt.digits)
	}
}

func TestLuhnCheckDigitRejectsWrongLength(t *testing.T) {
	_, ok := luhnCheckDigit("12345")
	assert.False(t, ok)
}

func TestLuhnCheckDigitRejectsNonDigits(t *testing.T) {
	_, ok := luhnCheckDigit("4901542032375x")
	assert.False(t, ok)
}
