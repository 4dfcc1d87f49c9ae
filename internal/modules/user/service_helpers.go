package user

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
	minUsernameLength = 3
	maxUsernameLength = 20
)

// hashPassword uses bcrypt to generate a hash from a plaintext password.
func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// checkPasswordHash compares a plaintext password with a bcrypt hash.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateOTP returns a uniformly random numeric code of exactly length
// digits, zero-padded.
func generateOTP(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func emailInDomain(email, domain string) bool {
	if domain == "" {
		return true
	}
	return strings.HasSuffix(email, "@"+strings.ToLower(domain))
}

var usernameChars = regexp.MustCompile(`^[a-z0-9._-]+$`)

func validUsername(username string) bool {
	n := len(username)
	return n >= minUsernameLength && n <= maxUsernameLength && usernameChars.MatchString(username)
}

// usernameFromEmail derives a username candidate from the local part,
// keeping only allowed characters and fitting the length bounds.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	for len(name) < minUsernameLength {
		name += "0"
	}
	if len(name) > maxUsernameLength {
		name = name[:maxUsernameLength]
	}
	return name
}

// withSuffix appends n to base, trimming base so the result stays valid.
func withSuffix(base string, n int) string {
	suffix := fmt.Sprintf("%d", n)
	if len(base)+len(suffix) > maxUsernameLength {
		base = base[:maxUsernameLength-len(suffix)]
	}
	return base + suffix
}
