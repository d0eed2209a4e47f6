// Package randompkg provides functionality gor generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int64) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Int64Between generates a random integer between min and max inclusive.
func Int64Between(min, max int64) int64 {
	return min + Intn(max-min+1)
}

func fromCharset(charset string, n int) string {
	var sb strings.Builder

	k := int64(len(charset))

	for i := 0; i < n; i++ {
		c := charset[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random string of length n.
func String(n int) string {
	return fromCharset(alphabet, n)
}

// Pin generates a random 4 digit PIN.
func Pin() string {
	return fromCharset(digits, 4)
}

// Name generates a random display name.
func Name() string {
	first, last := String(6), String(8)
	return strings.ToUpper(first[:1]) + first[1:] + " " + strings.ToUpper(last[:1]) + last[1:]
}

// AccountID generates a random account identifier with the given prefix.
func AccountID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, fromCharset(digits, 6))
}

// Amount generates a random amount of currency units between min and max.
func Amount(min, max int64) int64 {
	return Int64Between(min, max)
}
