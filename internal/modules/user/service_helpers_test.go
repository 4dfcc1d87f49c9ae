package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := generateOTP(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.Regexp(t, `^\d{6}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 150)

	code, err := generateOTP(4)
	require.NoError(t, err)
	assert.Len(t, code, 4)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "iit2021001", usernameFromEmail("IIT2021001@iiita.ac.in"))
	assert.Equal(t, "a.bc_c", usernameFromEmail("a.b+c_c@iiita.ac.in"))
	assert.Equal(t, "ab0", usernameFromEmail("ab@iiita.ac.in"))
	assert.Len(t, usernameFromEmail(strings.Repeat("x", 40)+"@iiita.ac.in"), maxUsernameLength)
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "alice3", withSuffix("alice", 3))
	long := strings.Repeat("y", maxUsernameLength)
	got := withSuffix(long, 12)
	assert.Len(t, got, maxUsernameLength)
	assert.True(t, strings.HasSuffix(got, "12"))
}

func TestValidUsername(t *testing.T) {
	assert.True(t, validUsername("alice_01"))
	assert.False(t, validUsername("al"))
	assert.False(t, validUsername("Alice"))
	assert.False(t, validUsername(strings.Repeat("a", 21)))
}

func TestEmailInDomain(t *testing.T) {
	assert.True(t, emailInDomain("a@iiita.ac.in", "iiita.ac.in"))
	assert.False(t, emailInDomain("a@evil-iiita.ac.in", "iiita.ac.in"))
	assert.True(t, emailInDomain("a@anything.com", ""))
}
