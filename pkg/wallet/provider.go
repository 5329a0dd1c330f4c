// Package wallet provides client-side signing backends for wallet login.
// Backends form a closed set selected by an explicit Kind; there is no
// name-based dynamic dispatch.
package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/hkdf"

	"github.com/guildpost/guildpost/internal/mvx"
)

// Kind selects a signing backend.
type Kind int

const (
	// KindSecretKey derives the keypair from a hex-encoded ed25519 seed.
	KindSecretKey Kind = iota
	// KindMnemonic derives the keypair from a mnemonic phrase.
	KindMnemonic
)

// ErrNotInitialized is returned when a provider is used before Init.
var ErrNotInitialized = errors.New("wallet provider not initialized")

// Provider is the capability set every signing backend exposes: initialize,
// report the wallet address, sign a login challenge, and tear down.
type Provider interface {
	// Init prepares the backend for signing.
	Init(ctx context.Context) error

	// Address returns the bech32 wallet address, or "" before Init.
	Address() string

	// SignLogin produces the detached hex signature over the canonical
	// login message for a nonce.
	SignLogin(nonce string) (string, error)

	// Logout discards the signing key material.
	Logout() error
}

// New creates a provider of the given kind from its credential: a hex seed
// for KindSecretKey, a mnemonic phrase for KindMnemonic.
func New(kind Kind, credential string) (Provider, error) {
	switch kind {
	case KindSecretKey:
		return &secretKeyProvider{seedHex: credential}, nil
	case KindMnemonic:
		return &mnemonicProvider{mnemonic: credential}, nil
	default:
		return nil, fmt.Errorf("unknown wallet provider kind %d", kind)
	}
}

type secretKeyProvider struct {
	seedHex string
	key     ed25519.PrivateKey
	address string
}

func (p *secretKeyProvider) Init(ctx context.Context) error {
	seed, err := hex.DecodeString(p.seedHex)
	if err != nil {
		return fmt.Errorf("invalid secret key hex: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("secret key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return p.adopt(ed25519.NewKeyFromSeed(seed))
}

func (p *secretKeyProvider) Address() string { return p.address }

func (p *secretKeyProvider) SignLogin(nonce string) (string, error) {
	if p.key == nil {
		return "", ErrNotInitialized
	}
	return mvx.SignLoginMessage(p.key, p.address, nonce), nil
}

func (p *secretKeyProvider) Logout() error {
	p.key = nil
	p.address = ""
	return nil
}

func (p *secretKeyProvider) adopt(key ed25519.PrivateKey) error {
	address, err := mvx.EncodeAddress(key.Public().(ed25519.PublicKey))
	if err != nil {
		return err
	}
	p.key = key
	p.address = address
	return nil
}

type mnemonicProvider struct {
	mnemonic string
	inner    secretKeyProvider
}

func (p *mnemonicProvider) Init(ctx context.Context) error {
	if p.mnemonic == "" {
		return errors.New("empty mnemonic")
	}

	// Stretch the phrase into an ed25519 seed with HKDF so distinct phrases
	// land on distinct keys deterministically.
	reader := hkdf.New(sha512.New, []byte(p.mnemonic), []byte("guildpost-wallet"), []byte("ed25519-seed"))
	seed := make([]byte, ed25519.SeedSize)
	if _, err := reader.Read(seed); err != nil {
		return fmt.Errorf("failed to derive key from mnemonic: %w", err)
	}
	return p.inner.adopt(ed25519.NewKeyFromSeed(seed))
}

func (p *mnemonicProvider) Address() string { return p.inner.Address() }

func (p *mnemonicProvider) SignLogin(nonce string) (string, error) {
	return p.inner.SignLogin(nonce)
}

func (p *mnemonicProvider) Logout() error { return p.inner.Logout() }
