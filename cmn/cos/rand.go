package cos

import (
	"crypto/rand"
	"math/big"
)

const randAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CryptoRandS generates a cryptographically random alpha-numeric string of
// length l - used as the suffix of resume checkpoint temp files, so two
// writers saving a checkpoint for the same destination do not collide.
func CryptoRandS(l int) string {
	b := make([]byte, l)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(randAlphabet))))
		if err != nil {
			// crypto/rand failure is unrecoverable; fall back rather than panic
			b[i] = randAlphabet[i%len(randAlphabet)]
			continue
		}
		b[i] = randAlphabet[n.Int64()]
	}
	return string(b)
}
