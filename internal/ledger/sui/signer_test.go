package sui

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certledger/internal/ledger"
	"certledger/internal/issuer"
)

func testSeed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func TestKeypairSignerAddress(t *testing.T) {
	signer, err := NewKeypairSigner(testSeed())
	require.NoError(t, err)

	addr := signer.Address()
	assert.Len(t, addr, 66)
	assert.Equal(t, issuer.Normalize(addr), addr, "derived addresses are already canonical")
	assert.Equal(t, addr, AddressFromPublicKey(signer.PublicKey()))

	other, err := NewKeypairSigner(make([]byte, ed25519.SeedSize))
	require.NoError(t, err)
	assert.NotEqual(t, addr, other.Address())
}

func TestParseKeypairSigner(t *testing.T) {
	seed := testSeed()
	want, err := NewKeypairSigner(seed)
	require.NoError(t, err)

	flagged := append([]byte{signatureSchemeEd25519}, seed...)
	cases := map[string]string{
		"hex":             hex.EncodeToString(seed),
		"prefixed hex":    "0x" + hex.EncodeToString(seed),
		"base64":          base64.StdEncoding.EncodeToString(seed),
		"keystore base64": base64.StdEncoding.EncodeToString(flagged),
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseKeypairSigner(encoded)
			require.NoError(t, err)
			assert.Equal(t, want.Address(), got.Address())
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseKeypairSigner("not a key!")
		assert.Error(t, err)
	})
	t.Run("rejects short seed", func(t *testing.T) {
		_, err := ParseKeypairSigner(hex.EncodeToString([]byte{1, 2, 3}))
		assert.Error(t, err)
	})
	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseKeypairSigner("  ")
		assert.Error(t, err)
	})
}

func TestKeypairSignerSign(t *testing.T) {
	signer, err := NewKeypairSigner(testSeed())
	require.NoError(t, err)

	encoded, err := signer.Sign(context.Background(), []byte("payload"))
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Len(t, raw, 1+ed25519.SignatureSize+ed25519.PublicKeySize)

	assert.Equal(t, byte(signatureSchemeEd25519), raw[0])
	assert.Equal(t, []byte(signer.PublicKey()), raw[1+ed25519.SignatureSize:])
	digest := SigningDigest([]byte("payload"))
	assert.True(t, ed25519.Verify(signer.PublicKey(), digest[:], raw[1:1+ed25519.SignatureSize]))

	t.Run("done caller context is a retryable transport failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := signer.Sign(ctx, []byte("payload"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ledger.ErrTransport))
		assert.True(t, ledger.IsRetryable(err))
	})
}
