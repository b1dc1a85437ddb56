package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const codeFallbackPrefix = "USER"

// GenerateCode builds a referral code from a display name: the first four
// ASCII letters upper-cased, right-padded with 'X', followed by a random
// number in [100, 999]. An empty or letter-free name falls back to
// "USER". The result is always exactly 7 characters; global uniqueness is
// the caller's job.
func GenerateCode(displayName string) string {
	var b strings.Builder
	for _, r := range displayName {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		default:
			continue
		}
		if b.Len() == 4 {
			break
		}
	}

	prefix := b.String()
	if prefix == "" {
		prefix = codeFallbackPrefix
	}
	for len(prefix) < 4 {
		prefix += "X"
	}

	return prefix + randomSuffix()
}

func randomSuffix() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken
		return "100"
	}
	return n.Add(n, big.NewInt(100)).String()
}

func StringPtr(s string) *string {
	return &s
}

func UintPtr(u uint) *uint {
	return &u
}

func BoolPtr(b bool) *bool {
	return &b
}
