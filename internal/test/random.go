package test

import "math/rand"

const loginAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789._"

// RandomASCIIString returns a login-safe string with a length in [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)
	buf := make([]byte, minLen+rand.Intn(maxLen-minLen+1))
	for i := range buf {
		buf[i] = loginAlphabet[rand.Intn(len(loginAlphabet))]
	}
	return string(buf)
}
