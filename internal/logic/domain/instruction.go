package domain

import (
	"errors"

	"tx-assembler-sol/internal/consts"
	"tx-assembler-sol/internal/types"
)

// ErrInstructionDataTooLarge 表示指令数据超出 compact-u16 可表示的长度上限。
var ErrInstructionDataTooLarge = errors.New("instruction data exceeds 65535 bytes")

// AccountMeta 表示指令引用的一个账户及其权限标记。
// 同一地址可在多条指令中以不同标记出现，编译阶段按 OR 规则合并。
type AccountMeta struct {
	Pubkey     types.Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction 表示一次程序调用：目标程序、按位置有序的账户引用、不透明数据。
// Build 之后视为不可变值，可在多协程间只读共享。
type Instruction struct {
	ProgramID types.Pubkey  // 所调用的程序地址
	Accounts  []AccountMeta // 账户引用列表，顺序即目标程序的参数位置
	Data      []byte        // 指令数据（原始字节序列）
}

// Validate 检查结构性约束（数据长度），语义正确性不在本层校验。
func (ix *Instruction) Validate() error {
	if len(ix.Data) > consts.MaxInstructionDataLen {
		return ErrInstructionDataTooLarge
	}
	return nil
}

// Clone 返回深拷贝，用于需要独立修改副本的调用方。
func (ix *Instruction) Clone() Instruction {
	out := Instruction{ProgramID: ix.ProgramID}
	out.Accounts = append([]AccountMeta(nil), ix.Accounts...)
	out.Data = append([]byte(nil), ix.Data...)
	return out
}
