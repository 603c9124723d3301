package persistence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestCipherRoundtrip(t *testing.T) {
	c, err := NewCipher(testKeyHex)
	require.NoError(t, err)
	require.NotNil(t, c)

	sealed, err := c.Encrypt("tok_live_abc123")
	require.NoError(t, err)
	assert.NotEqual(t, "tok_live_abc123", sealed)

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "tok_live_abc123", plain)
}

func TestCipherNilPassthrough(t *testing.T) {
	c, err := NewCipher("")
	require.NoError(t, err)
	require.Nil(t, c)

	sealed, err := c.Encrypt("secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", sealed)

	plain, err := c.Decrypt("secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", plain)
}

func TestCipherEmptyValueStaysEmpty(t *testing.T) {
	c, err := NewCipher(testKeyHex)
	require.NoError(t, err)

	sealed, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, sealed)
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	_, err := NewCipher("not-hex")
	assert.Error(t, err)

	_, err = NewCipher(strings.Repeat("ab", 16)) // 16 bytes, too short
	assert.Error(t, err)
}

func TestCipherRejectsTamperedCiphertext(t *testing.T) {
	c, err := NewCipher(testKeyHex)
	require.NoError(t, err)

	_, err = c.Decrypt("dGFtcGVyZWQ=")
	assert.Error(t, err)
}
