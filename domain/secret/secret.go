// Package secret generates license keys and site-login passwords.
package secret

import "fmt"

// Alphabets used for generated secrets.
const (
	LicenseKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	PasswordAlphabet   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()"

	LicenseKeyLength = 20
	PasswordLength   = 12
)

// Source supplies random bytes. ports.Random satisfies it.
type Source interface {
	Bytes(n int) ([]byte, error)
}

// Generator draws secrets uniformly from fixed alphabets.
type Generator struct {
	src Source
}

// NewGenerator creates a generator backed by src.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// LicenseKey returns a fresh 20-character alphanumeric license key.
func (g *Generator) LicenseKey() (string, error) {
	return g.draw(LicenseKeyAlphabet, LicenseKeyLength)
}

// Password returns a fresh 12-character password including symbols.
func (g *Generator) Password() (string, error) {
	return g.draw(PasswordAlphabet, PasswordLength)
}

// draw picks n symbols from alphabet. Bytes at or above the largest
// multiple of len(alphabet) are rejected so every symbol is equally likely.
func (g *Generator) draw(alphabet string, n int) (string, error) {
	size := len(alphabet)
	limit := 256 - 256%size

	out := make([]byte, 0, n)
	for len(out) < n {
		buf, err := g.src.Bytes(n - len(out) + 8)
		if err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%size])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
