package optimizer

import (
	"errors"
	"fmt"

	"tx-assembler-sol/internal/codec"
	"tx-assembler-sol/internal/consts"
	"tx-assembler-sol/internal/logic/domain"
	"tx-assembler-sol/internal/types"
	"tx-assembler-sol/pkg/logger"
)

// ErrUnsafeOptimization 表示请求的变换会改变已签名消息的语义，被拒绝执行。
var ErrUnsafeOptimization = errors.New("optimization would change signed message semantics")

// Strategy 为优化目标。可安全执行的变换对三种目标相同（仅移除未引用账户），
// 差异体现在分析建议的侧重上。
type Strategy int

const (
	StrategySize Strategy = iota
	StrategyCost
	StrategyBalanced
)

// Breakdown 为按类别的大小占比（百分比）。
type Breakdown struct {
	SignaturesPct      float64
	HeaderPct          float64
	AccountKeysPct     float64
	InstructionMetaPct float64
	InstructionDataPct float64
}

// Analysis 为一次只读分析的结果。
type Analysis struct {
	TotalSize            int
	SignatureBytes       int // 签名列表（含 compact 长度前缀）
	HeaderBytes          int // 3 字节头部 + 32 字节 blockhash
	AccountKeyBytes      int // 账户表（含 compact 长度前缀）
	InstructionMetaBytes int // 指令的索引与长度前缀部分
	InstructionDataBytes int // 指令数据本体

	NumSignatures   int
	NumAccounts     int
	NumInstructions int

	UnusedAccounts []types.Pubkey // 未被任何编译指令引用的条目（索引 0 除外）
	RedundantRefs  int            // 同一账户被引用的次数超出 1 的总和
	EfficiencyScore int           // 0~100，越高越紧凑
	Suggestions    []string

	Breakdown Breakdown
}

// Report 记录一次优化的前后大小与应用的变更。
type Report struct {
	OriginalSize  int
	OptimizedSize int
	BytesSaved    int
	Applied       []string
}

// referenceCounts 统计账户表各索引被编译指令引用的次数（程序索引也计入）。
func referenceCounts(msg *domain.Message) []int {
	counts := make([]int, len(msg.AccountKeys))
	for i := range msg.Instructions {
		ci := &msg.Instructions[i]
		if int(ci.ProgramIDIndex) < len(counts) {
			counts[ci.ProgramIDIndex]++
		}
		for _, idx := range ci.Accounts {
			if int(idx) < len(counts) {
				counts[idx]++
			}
		}
	}
	return counts
}

// Analyze 计算交易的大小构成、效率得分与优化建议。纯函数，不修改输入。
func Analyze(tx *domain.CompiledTransaction) Analysis {
	msg := &tx.Message

	a := Analysis{
		NumSignatures:   len(tx.Signatures),
		NumAccounts:     len(msg.AccountKeys),
		NumInstructions: len(msg.Instructions),
	}

	a.TotalSize = tx.Size()
	a.SignatureBytes = a.TotalSize - msg.ByteSize()
	a.HeaderBytes = msg.Header.ByteSize() + 32 // 头部 + blockhash
	a.AccountKeyBytes = codec.CompactLenSize(len(msg.AccountKeys)) + len(msg.AccountKeys)*32
	a.InstructionMetaBytes = codec.CompactLenSize(len(msg.Instructions))
	for i := range msg.Instructions {
		ci := &msg.Instructions[i]
		a.InstructionDataBytes += len(ci.Data)
		a.InstructionMetaBytes += ci.ByteSize() - len(ci.Data)
	}

	counts := referenceCounts(msg)
	required := int(msg.Header.NumRequiredSignatures)
	for idx := 1; idx < len(counts); idx++ {
		if counts[idx] == 0 {
			a.UnusedAccounts = append(a.UnusedAccounts, msg.AccountKeys[idx])
		}
		if counts[idx] > 1 {
			a.RedundantRefs += counts[idx] - 1
		}
	}

	a.Breakdown = breakdown(&a)
	a.EfficiencyScore = efficiencyScore(&a)
	a.Suggestions = suggestions(tx, &a, counts, required)

	return a
}

func breakdown(a *Analysis) Breakdown {
	total := float64(a.TotalSize)
	if total == 0 {
		return Breakdown{}
	}
	return Breakdown{
		SignaturesPct:      float64(a.SignatureBytes) / total * 100,
		HeaderPct:          float64(a.HeaderBytes) / total * 100,
		AccountKeysPct:     float64(a.AccountKeyBytes) / total * 100,
		InstructionMetaPct: float64(a.InstructionMetaBytes) / total * 100,
		InstructionDataPct: float64(a.InstructionDataBytes) / total * 100,
	}
}

// efficiencyScore 由未引用条目数、冗余引用数与载荷占比加权得出。
func efficiencyScore(a *Analysis) int {
	score := 100

	unusedPenalty := 10 * len(a.UnusedAccounts)
	if unusedPenalty > 40 {
		unusedPenalty = 40
	}
	score -= unusedPenalty

	redundantPenalty := 2 * a.RedundantRefs
	if redundantPenalty > 20 {
		redundantPenalty = 20
	}
	score -= redundantPenalty

	if a.TotalSize > 0 {
		overhead := a.TotalSize - a.InstructionDataBytes
		score -= int(float64(overhead) / float64(a.TotalSize) * 30)
	}

	if score < 0 {
		score = 0
	}
	return score
}

func suggestions(tx *domain.CompiledTransaction, a *Analysis, counts []int, required int) []string {
	var out []string

	if n := len(a.UnusedAccounts); n > 0 {
		out = append(out, fmt.Sprintf("remove %d unused account table entries", n))
	}
	for idx := 1; idx < required && idx < len(counts); idx++ {
		if counts[idx] == 0 {
			out = append(out, fmt.Sprintf("signer %s is never referenced but cannot be removed without changing the required signature count", tx.Message.AccountKeys[idx]))
		}
	}
	if a.NumAccounts > 1 {
		used := 0
		for idx := 1; idx < len(counts); idx++ {
			if counts[idx] > 0 {
				used++
			}
		}
		if utilization := float64(used) / float64(a.NumAccounts-1); utilization < 0.8 {
			out = append(out, fmt.Sprintf("account table utilization is %.0f%%, below 80%%", utilization*100))
		}
	}
	if a.NumInstructions > 5 {
		out = append(out, "consider batching similar operations into fewer instructions")
	}
	if a.NumAccounts > 20 {
		out = append(out, "high number of accounts, review if all are necessary")
	}
	if a.InstructionDataBytes > 1000 {
		out = append(out, "large instruction data, consider compressing or restructuring")
	}
	if a.TotalSize > consts.MaxTransactionSize {
		out = append(out, fmt.Sprintf("transaction is %d bytes, exceeds the %d byte packet limit", a.TotalSize, consts.MaxTransactionSize))
	}

	return out
}

// Optimize 对交易应用保语义的瘦身变换：移除未被任何编译指令引用的非签名账户
// 并重编号索引。不重排或合并仍被引用的条目（那会改变头部计数与标记推导）。
// 交易已存在填充签名时任何移除都会使签名失效，返回 ErrUnsafeOptimization。
// 对 Size 策略幂等：已优化的交易再优化节省 0 字节、变更列表为空。
func Optimize(tx *domain.CompiledTransaction, strategy Strategy) (*domain.CompiledTransaction, Report, error) {
	msg := &tx.Message
	counts := referenceCounts(msg)
	required := int(msg.Header.NumRequiredSignatures)

	var removable []int
	for idx := required; idx < len(counts); idx++ {
		// 签名账户不可移除：会改变必需签名数进而改变消息语义
		if idx > 0 && counts[idx] == 0 {
			removable = append(removable, idx)
		}
	}

	report := Report{OriginalSize: tx.Size()}

	if len(removable) == 0 {
		report.OptimizedSize = report.OriginalSize
		return tx, report, nil
	}

	if tx.HasFilledSignature() {
		return nil, Report{}, fmt.Errorf("%d removable entries but signatures already filled: %w",
			len(removable), ErrUnsafeOptimization)
	}

	removed := make(map[int]bool, len(removable))
	for _, idx := range removable {
		removed[idx] = true
	}

	out := tx.Clone()
	newMsg := &out.Message

	remap := make([]uint8, len(msg.AccountKeys))
	newKeys := make([]types.Pubkey, 0, len(msg.AccountKeys)-len(removable))
	removedReadonlyUnsigned := 0
	for idx, key := range msg.AccountKeys {
		if removed[idx] {
			if !msg.IsWritableIndex(idx) {
				removedReadonlyUnsigned++
			}
			report.Applied = append(report.Applied, fmt.Sprintf("removed unused account %s (index %d)", key, idx))
			continue
		}
		remap[idx] = uint8(len(newKeys))
		newKeys = append(newKeys, key)
	}

	newMsg.AccountKeys = newKeys
	newMsg.Header.NumReadonlyUnsignedAccounts -= uint8(removedReadonlyUnsigned)

	for i := range newMsg.Instructions {
		ci := &newMsg.Instructions[i]
		ci.ProgramIDIndex = remap[ci.ProgramIDIndex]
		for j, idx := range ci.Accounts {
			ci.Accounts[j] = remap[idx]
		}
	}

	report.OptimizedSize = out.Size()
	report.BytesSaved = report.OriginalSize - report.OptimizedSize

	logger.Debugf("optimize(%v): removed %d unused accounts, saved %d bytes",
		strategy, len(removable), report.BytesSaved)

	return out, report, nil
}
