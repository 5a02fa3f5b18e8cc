package sui

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"certledger/internal/ledger"
)

// transactionIntent is the intent prefix (scope TransactionData, version V0,
// app Sui) signed ahead of the transaction bytes.
var transactionIntent = []byte{0x00, 0x00, 0x00}

// KeypairSigner signs transactions with a local Ed25519 key.
type KeypairSigner struct {
	key     ed25519.PrivateKey
	address string
}

// NewKeypairSigner creates a signer from a 32-byte Ed25519 seed.
func NewKeypairSigner(seed []byte) (*KeypairSigner, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	key := ed25519.NewKeyFromSeed(seed)
	return &KeypairSigner{key: key, address: AddressFromPublicKey(key.Public().(ed25519.PublicKey))}, nil
}

// ParseKeypairSigner accepts a seed as hex (optionally 0x-prefixed) or as
// base64. A base64 value carrying the 0x00 scheme flag, as written by the Sui
// keystore, is accepted too.
func ParseKeypairSigner(encoded string) (*KeypairSigner, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.New("signer key is empty")
	}
	hexPart := strings.TrimPrefix(encoded, "0x")
	if raw, err := hex.DecodeString(hexPart); err == nil && len(raw) == ed25519.SeedSize {
		return NewKeypairSigner(raw)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("signer key must be hex or base64")
	}
	if len(raw) == ed25519.SeedSize+1 && raw[0] == signatureSchemeEd25519 {
		raw = raw[1:]
	}
	return NewKeypairSigner(raw)
}

// AddressFromPublicKey derives the ledger address of an Ed25519 public key.
func AddressFromPublicKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, len(pub)+1)
	buf = append(buf, signatureSchemeEd25519)
	buf = append(buf, pub...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

func (s *KeypairSigner) Address() string {
	return s.address
}

func (s *KeypairSigner) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// Sign returns base64(flag || signature || public key) over the blake2b
// digest of the intent-prefixed bytes.
func (s *KeypairSigner) Sign(ctx context.Context, txBytes []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ledger.NewError(ledger.CategoryTransport, "sign", transportReason(err)+" before dispatch", err)
	}
	digest := SigningDigest(txBytes)
	sig := ed25519.Sign(s.key, digest[:])

	pub := s.PublicKey()
	out := make([]byte, 0, 1+len(sig)+len(pub))
	out = append(out, signatureSchemeEd25519)
	out = append(out, sig...)
	out = append(out, pub...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// SigningDigest is the message actually signed for txBytes.
func SigningDigest(txBytes []byte) [32]byte {
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent...)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}

var _ ledger.Signer = (*KeypairSigner)(nil)
