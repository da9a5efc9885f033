package cryptox

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheap = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHash_VerifyRoundTrip(t *testing.T) {
	h, err := HashWithParams("s3cret-pass", cheap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"), h)

	ok, err := Verify("s3cret-pass", h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("other-pass", h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_SaltedEachTime(t *testing.T) {
	a, err := HashWithParams("same", cheap)
	require.NoError(t, err)
	b, err := HashWithParams("same", cheap)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHash_DefaultParams(t *testing.T) {
	h, err := Hash("pw")
	require.NoError(t, err)

	ok, err := Verify("pw", h)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"plain-text",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!$aGFzaA",
	} {
		_, err := Verify("pw", in)
		assert.Error(t, err, in)
	}

	_, err := Verify("pw", "$argon2id$v=16$m=1,t=1,p=1$c2FsdA$aGFzaA")
	assert.ErrorContains(t, err, "incompatible argon2 version")
}

func TestMakeRandCode(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		c, err := MakeRandCode(6)
		require.NoError(t, err)
		require.Regexp(t, re, c)
		seen[c] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)

	c, err := MakeRandCode(0)
	require.NoError(t, err)
	assert.Empty(t, c)
}
