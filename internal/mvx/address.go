// Package mvx implements the chain-specific primitives of wallet login:
// bech32 address decoding and signed-message verification.
package mvx

import (
	"crypto/ed25519"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/guildpost/guildpost/core"
)

// AddressHRP is the human-readable prefix of a wallet address.
const AddressHRP = "erd"

// PubKeyLength is the raw public key size carried inside an address.
const PubKeyLength = ed25519.PublicKeySize

// DecodeAddress validates a bech32 wallet address and extracts the raw
// 32-byte ed25519 public key. It is a pure function with no side effects.
func DecodeAddress(address string) (ed25519.PublicKey, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidAddress, err)
	}
	if hrp != AddressHRP {
		return nil, fmt.Errorf("%w: unsupported prefix %q", core.ErrInvalidAddress, hrp)
	}
	pubKey, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidAddress, err)
	}
	if len(pubKey) != PubKeyLength {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d", core.ErrInvalidAddress, len(pubKey), PubKeyLength)
	}
	return ed25519.PublicKey(pubKey), nil
}

// EncodeAddress renders a raw ed25519 public key as a bech32 wallet address.
func EncodeAddress(pubKey ed25519.PublicKey) (string, error) {
	if len(pubKey) != PubKeyLength {
		return "", fmt.Errorf("%w: public key is %d bytes, want %d", core.ErrInvalidAddress, len(pubKey), PubKeyLength)
	}
	data, err := bech32.ConvertBits(pubKey, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrInvalidAddress, err)
	}
	return bech32.Encode(AddressHRP, data)
}
