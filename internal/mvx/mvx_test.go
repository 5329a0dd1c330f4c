package mvx

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildpost/guildpost/core"
)

func generateWallet(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	address, err := EncodeAddress(pub)
	require.NoError(t, err)
	return address, priv
}

func TestAddressRoundTrip(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	address, err := EncodeAddress(pub)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(address, "erd1"))

	decoded, err := DecodeAddress(address)
	require.NoError(t, err)
	assert.Equal(t, []byte(pub), []byte(decoded))
}

func TestDecodeAddressRejectsMalformedInput(t *testing.T) {
	address, _ := generateWallet(t)

	cases := map[string]string{
		"empty":            "",
		"not bech32":       "not-an-address",
		"corrupt checksum": address[:len(address)-1] + flipChar(address[len(address)-1]),
		"wrong prefix":     "btc1" + address[4:],
		"truncated":        address[:20],
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeAddress(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidAddress))
		})
	}
}

func TestVerifyLoginSignature(t *testing.T) {
	address, priv := generateWallet(t)
	nonce := "abc123"

	sig := SignLoginMessage(priv, address, nonce)
	assert.True(t, VerifyLoginSignature(sig, address, nonce))
	assert.True(t, VerifyLoginSignature("0x"+sig, address, nonce), "0x prefix is accepted")
}

func TestVerifyLoginSignatureRejectsWrongKey(t *testing.T) {
	address, _ := generateWallet(t)
	_, otherPriv := generateWallet(t)
	nonce := "abc123"

	// Signature from a different key over the same message.
	sig := SignLoginMessage(otherPriv, address, nonce)
	assert.False(t, VerifyLoginSignature(sig, address, nonce))
}

func TestVerifyLoginSignatureTamperSensitivity(t *testing.T) {
	address, priv := generateWallet(t)
	nonce := "abc123"
	sig := SignLoginMessage(priv, address, nonce)

	t.Run("flipped signature bit", func(t *testing.T) {
		raw, err := hex.DecodeString(sig)
		require.NoError(t, err)
		raw[0] ^= 0x01
		assert.False(t, VerifyLoginSignature(hex.EncodeToString(raw), address, nonce))
	})

	t.Run("different nonce", func(t *testing.T) {
		assert.False(t, VerifyLoginSignature(sig, address, "abc124"))
	})

	t.Run("different address", func(t *testing.T) {
		otherAddress, _ := generateWallet(t)
		assert.False(t, VerifyLoginSignature(sig, otherAddress, nonce))
	})
}

func TestVerifyLoginSignatureNeverPanicsOnGarbage(t *testing.T) {
	address, _ := generateWallet(t)

	assert.False(t, VerifyLoginSignature("", address, "n"))
	assert.False(t, VerifyLoginSignature("zzzz", address, "n"))
	assert.False(t, VerifyLoginSignature("deadbeef", address, "n"), "wrong signature length")
	assert.False(t, VerifyLoginSignature(strings.Repeat("ab", 64), "garbage", "n"))
}

func TestLoginMessageHashIsDomainSeparated(t *testing.T) {
	address, _ := generateWallet(t)

	h1 := LoginMessageHash(address, "nonce-1")
	h2 := LoginMessageHash(address, "nonce-2")
	assert.Len(t, h1, 32)
	assert.NotEqual(t, h1, h2)
}

func flipChar(c byte) string {
	if c == 'q' {
		return "p"
	}
	return "q"
}
