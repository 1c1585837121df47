package ixbuilder

import (
	"tx-assembler-sol/internal/codec"
	"tx-assembler-sol/internal/consts"
	"tx-assembler-sol/internal/logic/domain"
)

// ComputeBudget 程序的指令判别符（数据首字节）。
const (
	ComputeBudgetSetUnitLimit = 0x02 // 后随 4 字节小端 CU 上限
	ComputeBudgetSetUnitPrice = 0x03 // 后随 8 字节小端 CU 单价（micro-lamports）
)

// SetComputeUnitLimit 构造设置 CU 上限的 compute budget 指令。
func SetComputeUnitLimit(units uint32) domain.Instruction {
	return New(consts.ComputeBudgetProgram).
		AppendU8(ComputeBudgetSetUnitLimit).
		AppendU32(units).
		Build()
}

// SetComputeUnitPrice 构造设置 CU 单价的 compute budget 指令（优先费）。
func SetComputeUnitPrice(microLamports uint64) domain.Instruction {
	return New(consts.ComputeBudgetProgram).
		AppendU8(ComputeBudgetSetUnitPrice).
		AppendU64(microLamports).
		Build()
}

// ComputeBudgetParams 为从编译后指令中提取到的 compute budget 参数。
type ComputeBudgetParams struct {
	UnitLimit    uint32
	UnitPrice    uint64
	HasUnitLimit bool
	HasUnitPrice bool
}

// ParseComputeBudget 扫描编译后消息中的 compute budget 指令并提取参数。
// 纯函数：仅依据程序地址与判别符识别，数据长度不符的指令直接跳过。
// 同类指令出现多条时以最后一条为准（与链上执行语义一致）。
func ParseComputeBudget(msg *domain.Message) ComputeBudgetParams {
	var params ComputeBudgetParams

	for i := range msg.Instructions {
		ci := &msg.Instructions[i]
		idx := int(ci.ProgramIDIndex)
		if idx >= len(msg.AccountKeys) || msg.AccountKeys[idx] != consts.ComputeBudgetProgram {
			continue
		}
		if len(ci.Data) == 0 {
			continue
		}

		cur := codec.NewCursor(ci.Data[1:])
		switch ci.Data[0] {
		case ComputeBudgetSetUnitLimit:
			if v, err := cur.U32(); err == nil {
				params.UnitLimit = v
				params.HasUnitLimit = true
			}
		case ComputeBudgetSetUnitPrice:
			if v, err := cur.U64(); err == nil {
				params.UnitPrice = v
				params.HasUnitPrice = true
			}
		}
	}

	return params
}
