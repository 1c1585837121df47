package ixbuilder

import (
	"fmt"

	"github.com/near/borsh-go"
)

// DiscriminatorLength 为 Anchor 风格指令判别符的长度（数据前 8 字节）。
const DiscriminatorLength = 8

// ExtractDiscriminator 提取指令数据的前 8 字节判别符，数据不足时返回 false。
func ExtractDiscriminator(data []byte) ([DiscriminatorLength]byte, bool) {
	var disc [DiscriminatorLength]byte
	if len(data) < DiscriminatorLength {
		return disc, false
	}
	copy(disc[:], data[:DiscriminatorLength])
	return disc, true
}

// MatchesDiscriminator 判断指令数据是否以给定判别符开头。
func MatchesDiscriminator(data []byte, disc [DiscriminatorLength]byte) bool {
	got, ok := ExtractDiscriminator(data)
	return ok && got == disc
}

// DecodeBorsh 将指令数据按 borsh 反序列化到 out（通常先剥离判别符前缀）。
func DecodeBorsh(out interface{}, data []byte) error {
	if err := borsh.Deserialize(out, data); err != nil {
		return fmt.Errorf("borsh deserialize %T: %w", out, err)
	}
	return nil
}
