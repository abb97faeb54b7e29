package cryptox

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"unicode"
)

// Charset selects which character classes a generated password draws from.
// Flags combine with bitwise OR.
type Charset uint8

const (
	CharsetLower Charset = 1 << iota
	CharsetUpper
	CharsetDigits
	CharsetSymbols
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{}:;,.?"
)

var (
	// ErrEmptyCharset is returned when no character class was selected.
	ErrEmptyCharset = errors.New("no character classes selected")

	// ErrLengthTooShort is returned when the requested length cannot hold one
	// character from every selected class.
	ErrLengthTooShort = errors.New("password length too short for selected classes")
)

// GeneratePassword builds a random password of the given length from the
// selected character classes.
//
// One character from every selected class is placed first, the remaining
// positions are drawn from the union of all classes, and the result is
// shuffled with the same random stream, so the per-class guarantee cannot be
// inferred from character positions.
func GeneratePassword(length int, classes Charset) (string, error) {
	var sets []string
	if classes&CharsetLower != 0 {
		sets = append(sets, lowerChars)
	}
	if classes&CharsetUpper != 0 {
		sets = append(sets, upperChars)
	}
	if classes&CharsetDigits != 0 {
		sets = append(sets, digitChars)
	}
	if classes&CharsetSymbols != 0 {
		sets = append(sets, symbolChars)
	}

	if len(sets) == 0 {
		return "", ErrEmptyCharset
	}
	if length < len(sets) {
		return "", ErrLengthTooShort
	}

	password := make([]byte, 0, length)
	for _, set := range sets {
		ch, err := randomChar(set)
		if err != nil {
			return "", err
		}
		password = append(password, ch)
	}

	all := strings.Join(sets, "")
	for len(password) < length {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		password = append(password, ch)
	}

	if err := shuffle(password); err != nil {
		return "", err
	}

	return string(password), nil
}

func randomChar(set string) (byte, error) {
	idx, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[idx], nil
}

// randInt returns a uniform random int in [0, max).
func randInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}

// shuffle performs a Fisher-Yates shuffle driven by the secure random source.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

// strengthLabels is indexed by the 0..4 strength score.
var strengthLabels = [...]string{"very weak", "weak", "fair", "good", "strong"}

// StrengthScore rates a password on a 0..4 scale from length thresholds and
// character-class diversity. The score is deterministic and purely advisory;
// it never gates any vault operation.
func StrengthScore(password string) (int, string) {
	if password == "" {
		return 0, strengthLabels[0]
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if ok {
			classes++
		}
	}

	score := 0
	if len(password) >= 8 {
		score++
	}
	if len(password) >= 12 {
		score++
	}
	if classes >= 3 {
		score++
	}
	if classes == 4 && len(password) >= 10 {
		score++
	}

	return score, strengthLabels[score]
}
