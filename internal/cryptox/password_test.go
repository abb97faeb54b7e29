package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsAny(s, set string) bool {
	return strings.ContainsAny(s, set)
}

func TestGeneratePassword_Length(t *testing.T) {
	for _, length := range []int{4, 8, 16, 64} {
		pw, err := GeneratePassword(length, CharsetLower|CharsetUpper|CharsetDigits|CharsetSymbols)
		require.NoError(t, err)
		assert.Len(t, pw, length)
	}
}

func TestGeneratePassword_EveryClassPresent(t *testing.T) {
	tests := []struct {
		name    string
		classes Charset
		sets    []string
	}{
		{"lower only", CharsetLower, []string{lowerChars}},
		{"lower+digits", CharsetLower | CharsetDigits, []string{lowerChars, digitChars}},
		{"all classes", CharsetLower | CharsetUpper | CharsetDigits | CharsetSymbols,
			[]string{lowerChars, upperChars, digitChars, symbolChars}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// repeat to make a missing forced character very unlikely to slip by
			for i := 0; i < 50; i++ {
				pw, err := GeneratePassword(12, tt.classes)
				require.NoError(t, err)

				for _, set := range tt.sets {
					assert.True(t, containsAny(pw, set), "password %q misses class %q", pw, set[:3])
				}
			}
		})
	}
}

func TestGeneratePassword_OnlySelectedClasses(t *testing.T) {
	pw, err := GeneratePassword(32, CharsetDigits)
	require.NoError(t, err)

	for _, r := range pw {
		assert.Contains(t, digitChars, string(r))
	}
}

func TestGeneratePassword_Errors(t *testing.T) {
	_, err := GeneratePassword(16, 0)
	assert.ErrorIs(t, err, ErrEmptyCharset)

	_, err = GeneratePassword(2, CharsetLower|CharsetUpper|CharsetDigits|CharsetSymbols)
	assert.ErrorIs(t, err, ErrLengthTooShort)
}

func TestGeneratePassword_NotConstant(t *testing.T) {
	pw1, err := GeneratePassword(20, CharsetLower|CharsetDigits)
	require.NoError(t, err)
	pw2, err := GeneratePassword(20, CharsetLower|CharsetDigits)
	require.NoError(t, err)

	assert.NotEqual(t, pw1, pw2)
}

func TestStrengthScore(t *testing.T) {
	tests := []struct {
		password string
		score    int
		label    string
	}{
		{"", 0, "very weak"},
		{"abc", 0, "very weak"},
		{"abcdefgh", 1, "weak"},
		{"Tr0ub4dor&3", 3, "good"},
		{"correcthorsebattery", 2, "fair"},
		{"CorrectHorse42Battery", 3, "good"},
		{"CorrectHorse42!Battery", 4, "strong"},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			score, label := StrengthScore(tt.password)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.label, label)
		})
	}
}
