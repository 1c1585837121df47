package ixbuilder

import (
	"encoding/binary"
	"fmt"

	"github.com/near/borsh-go"

	"tx-assembler-sol/internal/logic/domain"
	"tx-assembler-sol/internal/types"
)

// Builder 是指令的可变累加器：逐步追加账户引用与数据片段，Build 产出 Instruction。
// 账户顺序严格等于调用顺序，本层不做去重与重排（由编译器负责）。
type Builder struct {
	programID types.Pubkey
	accounts  []domain.AccountMeta
	data      []byte
}

func New(programID types.Pubkey) *Builder {
	return &Builder{programID: programID}
}

// Account 按调用顺序追加一个账户引用。
func (b *Builder) Account(meta domain.AccountMeta) *Builder {
	b.accounts = append(b.accounts, meta)
	return b
}

func (b *Builder) Accounts(metas ...domain.AccountMeta) *Builder {
	b.accounts = append(b.accounts, metas...)
	return b
}

// Signer 追加一个签名账户。
func (b *Builder) Signer(pubkey types.Pubkey, isWritable bool) *Builder {
	return b.Account(domain.AccountMeta{Pubkey: pubkey, IsSigner: true, IsWritable: isWritable})
}

// Writable 追加一个可写账户。
func (b *Builder) Writable(pubkey types.Pubkey, isSigner bool) *Builder {
	return b.Account(domain.AccountMeta{Pubkey: pubkey, IsSigner: isSigner, IsWritable: true})
}

// Readonly 追加一个只读非签名账户。
func (b *Builder) Readonly(pubkey types.Pubkey) *Builder {
	return b.Account(domain.AccountMeta{Pubkey: pubkey})
}

// SetData 整体替换数据缓冲。
func (b *Builder) SetData(data []byte) *Builder {
	b.data = append(b.data[:0:0], data...)
	return b
}

// AppendData 原样追加字节。
func (b *Builder) AppendData(data []byte) *Builder {
	b.data = append(b.data, data...)
	return b
}

func (b *Builder) AppendU8(v byte) *Builder {
	b.data = append(b.data, v)
	return b
}

func (b *Builder) AppendU32(v uint32) *Builder {
	b.data = binary.LittleEndian.AppendUint32(b.data, v)
	return b
}

func (b *Builder) AppendU64(v uint64) *Builder {
	b.data = binary.LittleEndian.AppendUint64(b.data, v)
	return b
}

// AppendBorsh 将结构体按 borsh 序列化后追加到数据缓冲。
func (b *Builder) AppendBorsh(v interface{}) error {
	raw, err := borsh.Serialize(v)
	if err != nil {
		return fmt.Errorf("borsh serialize %T: %w", v, err)
	}
	b.data = append(b.data, raw...)
	return nil
}

// Build 产出 Instruction。零账户零数据的指令也是合法的（可作空操作标记）。
// Build 之后应丢弃 Builder，内部切片所有权已转移给返回值。
func (b *Builder) Build() domain.Instruction {
	ix := domain.Instruction{
		ProgramID: b.programID,
		Accounts:  b.accounts,
		Data:      b.data,
	}
	b.accounts = nil
	b.data = nil
	return ix
}
