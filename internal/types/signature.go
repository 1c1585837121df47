package types

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// SignatureLength 为 ed25519 签名的固定字节长度。
const SignatureLength = 64

// Signature 表示 64 字节的交易签名，全 0 表示未填充的占位签名。
type Signature [SignatureLength]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (s Signature) Bytes() []byte {
	return s[:]
}

// IsZero 判断是否为未填充的占位签名。
func (s Signature) IsZero() bool {
	return s == Signature{}
}

func SignatureFromBytes(data []byte) (Signature, error) {
	var sig Signature
	if len(data) != SignatureLength {
		return sig, fmt.Errorf("invalid signature length: got %d, want %d", len(data), SignatureLength)
	}
	copy(sig[:], data)
	return sig, nil
}
