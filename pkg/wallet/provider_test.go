package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildpost/guildpost/internal/mvx"
)

func TestSecretKeyProvider(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	_, err := rand.Read(seed)
	require.NoError(t, err)

	provider, err := New(KindSecretKey, hex.EncodeToString(seed))
	require.NoError(t, err)
	require.NoError(t, provider.Init(context.Background()))

	address := provider.Address()
	assert.True(t, strings.HasPrefix(address, "erd1"))

	sig, err := provider.SignLogin("nonce-1")
	require.NoError(t, err)
	assert.True(t, mvx.VerifyLoginSignature(sig, address, "nonce-1"))

	require.NoError(t, provider.Logout())
	assert.Empty(t, provider.Address())
	_, err = provider.SignLogin("nonce-1")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSecretKeyProviderRejectsBadSeed(t *testing.T) {
	provider, err := New(KindSecretKey, "zz")
	require.NoError(t, err)
	assert.Error(t, provider.Init(context.Background()))

	provider, err = New(KindSecretKey, "abcd")
	require.NoError(t, err)
	assert.Error(t, provider.Init(context.Background()), "wrong seed length")
}

func TestMnemonicProviderIsDeterministic(t *testing.T) {
	first, err := New(KindMnemonic, "moral volcano peasant pass circle pen over picture")
	require.NoError(t, err)
	require.NoError(t, first.Init(context.Background()))

	second, err := New(KindMnemonic, "moral volcano peasant pass circle pen over picture")
	require.NoError(t, err)
	require.NoError(t, second.Init(context.Background()))

	assert.Equal(t, first.Address(), second.Address())

	other, err := New(KindMnemonic, "a completely different phrase")
	require.NoError(t, err)
	require.NoError(t, other.Init(context.Background()))
	assert.NotEqual(t, first.Address(), other.Address())
}

func TestUnknownKind(t *testing.T) {
	_, err := New(Kind(42), "")
	assert.Error(t, err)
}
