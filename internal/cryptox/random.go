package cryptox

import (
	"crypto/rand"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MakeRandCode returns a code of n characters drawn uniformly from [A-Z0-9].
func MakeRandCode(n int) (string, error) {
	limit := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b), nil
}
