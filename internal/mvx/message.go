package mvx

import (
	"crypto/ed25519"
	"encoding/hex"
	"strconv"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// signedMessagePrefix marks a payload as an application-level signed message,
// mirroring the chain wallet convention. Hashing the prefix together with the
// message length prevents a login signature from being replayed as a
// transaction signature or in any other protocol context.
const signedMessagePrefix = "\x17Elrond Signed Message:\n"

// loginPayloadMarker is the fixed empty-payload suffix the signing client
// appends to the login message.
const loginPayloadMarker = "{}"

// LoginMessageHash builds the canonical login plaintext for an (address,
// nonce) pair and applies the domain-separation hash. The plaintext is the
// bare concatenation address+nonce+"{}" with no delimiters; the byte
// sequence must match what the wallet produces exactly.
func LoginMessageHash(address, nonce string) []byte {
	message := address + nonce + loginPayloadMarker
	prefixed := signedMessagePrefix + strconv.Itoa(len(message)) + message
	return ethcrypto.Keccak256([]byte(prefixed))
}

// VerifyLoginSignature checks a detached ed25519 signature over the canonical
// login message hash against the public key embedded in the address. Any
// decoding failure means the proof is invalid, never an error: malformed
// input must not crash or abort the login flow.
func VerifyLoginSignature(signatureHex, address, nonce string) bool {
	pubKey, err := DecodeAddress(address)
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(signatureHex, "0x"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pubKey, LoginMessageHash(address, nonce), sig)
}

// SignLoginMessage produces the detached hex signature a wallet submits for
// an (address, nonce) pair. It is the client-side counterpart of
// VerifyLoginSignature.
func SignLoginMessage(priv ed25519.PrivateKey, address, nonce string) string {
	return hex.EncodeToString(ed25519.Sign(priv, LoginMessageHash(address, nonce)))
}
