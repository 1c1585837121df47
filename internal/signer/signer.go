package signer

import (
	"crypto/ed25519"
	"fmt"

	sdktypes "github.com/blocto/solana-go-sdk/types"

	"tx-assembler-sol/internal/types"
)

// Signer 是外部签名能力的抽象：对给定消息字节产出 64 字节签名。
// 交易构建层只依赖该接口，便于注入确定性桩实现做测试。
type Signer interface {
	Pubkey() types.Pubkey
	Sign(message []byte) (types.Signature, error)
}

// LocalSigner 基于本地 ed25519 私钥实现 Signer。
type LocalSigner struct {
	account sdktypes.Account
}

// NewLocalSigner 随机生成一个本地签名者（测试与开发用途）。
func NewLocalSigner() *LocalSigner {
	return &LocalSigner{account: sdktypes.NewAccount()}
}

// FromSeed 由 32 字节 ed25519 种子构造签名者（确定性，适合测试固定密钥）。
func FromSeed(seed []byte) (*LocalSigner, error) {
	account, err := sdktypes.AccountFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("account from seed: %w", err)
	}
	return &LocalSigner{account: account}, nil
}

// FromBytes 由 64 字节私钥构造签名者。
func FromBytes(key []byte) (*LocalSigner, error) {
	account, err := sdktypes.AccountFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("account from bytes: %w", err)
	}
	return &LocalSigner{account: account}, nil
}

// FromBase58 由 base58 私钥构造签名者。
func FromBase58(key string) (*LocalSigner, error) {
	account, err := sdktypes.AccountFromBase58(key)
	if err != nil {
		return nil, fmt.Errorf("account from base58: %w", err)
	}
	return &LocalSigner{account: account}, nil
}

func (s *LocalSigner) Pubkey() types.Pubkey {
	var p types.Pubkey
	copy(p[:], s.account.PublicKey.Bytes())
	return p
}

func (s *LocalSigner) Sign(message []byte) (types.Signature, error) {
	raw := ed25519.Sign(s.account.PrivateKey, message)
	return types.SignatureFromBytes(raw)
}
