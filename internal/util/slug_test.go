package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "fantasy", "fantasy"},
		{"uppercase", "Fantasy", "fantasy"},
		{"spaces", "Slow Burn", "slow-burn"},
		{"already slugged", "slow-burn", "slow-burn"},
		{"underscores", "science_fiction", "science-fiction"},
		{"slashes", "sci/fi", "sci-fi"},
		{"mixed separators", "Found  Family_/Romance", "found-family-romance"},
		{"punctuation stripped", "what?!", "what"},
		{"polish diacritics", "Literatura Piękna", "literatura-piekna"},
		{"stroked l", "Włamanie", "wlamanie"},
		{"mixed diacritics", "Powieść Historyczna", "powiesc-historyczna"},
		{"leading and trailing dashes", "--edgy--", "edgy"},
		{"collapses dashes", "a---b", "a-b"},
		{"whitespace only", "   ", ""},
		{"symbols only", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSlug(tt.input))
		})
	}
}

func TestNormalizeSlug_CaseInsensitiveEquivalence(t *testing.T) {
	// Different casings of the same input must resolve to one slug.
	variants := []string{"Slow Burn", "slow burn", "SLOW-BURN", "slow_burn"}
	for _, v := range variants {
		assert.Equal(t, "slow-burn", NormalizeSlug(v))
	}
}
