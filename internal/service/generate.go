package service

import (
	"math/rand/v2"
	"strings"
	"time"
)

const randAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randSuffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(randAlphabet[rand.IntN(len(randAlphabet))])
	}
	return b.String()
}

// GenerateSaleNumber produces SL-<YYYYMMDD>-<5 char random>. Collisions
// are possible; the sale path regenerates once on a unique violation.
func GenerateSaleNumber() string {
	return "SL-" + time.Now().UTC().Format("20060102") + "-" + randSuffix(5)
}

// GenerateSKU derives a short code from the item name plus a random tail.
func GenerateSKU(name string) string {
	var prefix strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			prefix.WriteRune(r)
			if prefix.Len() == 3 {
				break
			}
		}
	}
	if prefix.Len() == 0 {
		prefix.WriteString("ITM")
	}
	return prefix.String() + "-" + randSuffix(4)
}

// GenerateTransactionNumber produces POS-<6 char random>.
func GenerateTransactionNumber() string {
	return "POS-" + randSuffix(6)
}
