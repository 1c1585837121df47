package signer

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSeedDeterministic(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	s1, err := FromSeed(seed)
	require.NoError(t, err)
	s2, err := FromSeed(seed)
	require.NoError(t, err)

	assert.Equal(t, s1.Pubkey(), s2.Pubkey())
	assert.False(t, s1.Pubkey().IsZero())
}

func TestSignVerifies(t *testing.T) {
	s := NewLocalSigner()
	message := []byte("compiled message bytes")

	sig, err := s.Sign(message)
	require.NoError(t, err)

	pub := s.Pubkey()
	assert.True(t, ed25519.Verify(ed25519.PublicKey(pub[:]), message, sig[:]))

	// 不同消息的签名不能互换
	assert.False(t, ed25519.Verify(ed25519.PublicKey(pub[:]), []byte("other"), sig[:]))
}

func TestNewLocalSignerDistinct(t *testing.T) {
	a := NewLocalSigner()
	b := NewLocalSigner()
	assert.NotEqual(t, a.Pubkey(), b.Pubkey())
}

func TestFromBytesInvalidLength(t *testing.T) {
	_, err := FromBytes(make([]byte, 63))
	assert.Error(t, err)
}

func TestFromBase58Invalid(t *testing.T) {
	_, err := FromBase58("not-base58-0OIl")
	assert.Error(t, err)
}
