package optimizer

import (
	"tx-assembler-sol/internal/codec"
	"tx-assembler-sol/internal/consts"
	"tx-assembler-sol/internal/logic/domain"
)

// ExceedsMaxSize 判断交易是否超出单包大小上限。
func ExceedsMaxSize(tx *domain.CompiledTransaction) bool {
	return tx.Size() > consts.MaxTransactionSize
}

// AvailableSpace 返回距离大小上限的剩余字节数（超限时为负）。
func AvailableSpace(tx *domain.CompiledTransaction) int {
	return consts.MaxTransactionSize - tx.Size()
}

// CanAddInstruction 估算再追加一条指令是否会超出大小上限。
// dataSize 为指令数据字节数，numNewAccounts 为账户表需要新增的条目数
// （已在表中的账户传 0，新账户同时占用 32 字节表空间与 1 字节索引）。
func CanAddInstruction(tx *domain.CompiledTransaction, dataSize, numNewAccounts int) bool {
	instructionSize := 1 + // 程序索引
		codec.CompactLenSize(numNewAccounts) + numNewAccounts +
		codec.CompactLenSize(dataSize) + dataSize
	tableSize := numNewAccounts * 32
	return AvailableSpace(tx) >= instructionSize+tableSize
}

// Comparison 为两笔交易的结构差异（tx1 - tx2）。
type Comparison struct {
	SizeDiff        int
	InstructionDiff int
	AccountDiff     int
}

// Compare 比较两笔交易的大小与结构。
func Compare(tx1, tx2 *domain.CompiledTransaction) Comparison {
	return Comparison{
		SizeDiff:        tx1.Size() - tx2.Size(),
		InstructionDiff: len(tx1.Message.Instructions) - len(tx2.Message.Instructions),
		AccountDiff:     len(tx1.Message.AccountKeys) - len(tx2.Message.AccountKeys),
	}
}
