package fee

import (
	"errors"
	"fmt"

	"tx-assembler-sol/internal/config"
	"tx-assembler-sol/internal/consts"
	"tx-assembler-sol/internal/logic/domain"
	"tx-assembler-sol/internal/logic/ixbuilder"
)

// ErrInvalidPercentile 表示百分位参数超出 0~100。
var ErrInvalidPercentile = errors.New("percentile must be between 0 and 100")

// Strategy 为优先费策略档位，单价随档位单调不减。
type Strategy int

const (
	StrategyLow Strategy = iota
	StrategyMedium
	StrategyHigh
	StrategyUrgent
)

func (s Strategy) String() string {
	switch s {
	case StrategyLow:
		return "low"
	case StrategyMedium:
		return "medium"
	case StrategyHigh:
		return "high"
	case StrategyUrgent:
		return "urgent"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// AllStrategies 按档位从低到高排列。
var AllStrategies = []Strategy{StrategyLow, StrategyMedium, StrategyHigh, StrategyUrgent}

// Urgency 为调用方对确认速度的需求档位。
type Urgency int

const (
	UrgencyNotUrgent Urgency = iota // 可等待下个区块或更久
	UrgencyNormal                   // 希望尽快打包
	UrgencyUrgent                   // 需要快速确认
	UrgencyCritical                 // 时间敏感
)

// Estimate 为一次费用估算结果，单位 lamports（CU 单价为 micro-lamports）。
type Estimate struct {
	BaseFee          uint64 // 签名数 × 每签名基础费
	PriorityFee      uint64 // CU 上限 × CU 单价，micro-lamports 向下取整换算
	ComputeUnitLimit uint32 // 参与计算的 CU 上限
	ComputeUnitPrice uint64 // 参与计算的 CU 单价（micro-lamports）
	TotalFee         uint64
}

// StrategyEstimate 为 CompareStrategies 的单项结果。
type StrategyEstimate struct {
	Strategy Strategy
	Estimate Estimate
}

// Calculator 是纯计算的费用估算器：只读取交易自身数据与固定参数，无网络访问。
type Calculator struct {
	cfg config.FeeConfig
}

func NewCalculator(cfg config.FeeConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Default 使用默认费用参数。
func Default() *Calculator {
	return NewCalculator(config.DefaultFeeConfig())
}

// Estimate 估算交易费用：基础费按必需签名数计，优先费按 CU 上限 × CU 单价计。
// CU 参数优先取交易内的 compute budget 指令，缺省时回退到策略默认值。
func (c *Calculator) Estimate(tx *domain.CompiledTransaction, strategy Strategy) Estimate {
	baseFee := uint64(tx.Message.Header.NumRequiredSignatures) * c.cfg.BaseFeePerSignature

	params := ixbuilder.ParseComputeBudget(&tx.Message)

	limit := c.cfg.DefaultComputeUnitLimit
	if params.HasUnitLimit {
		limit = params.UnitLimit
	}

	price := c.StrategyPrice(strategy)
	if params.HasUnitPrice {
		price = params.UnitPrice
	}

	priorityFee := uint64(limit) * price / consts.MicroLamportsPerLamport

	return Estimate{
		BaseFee:          baseFee,
		PriorityFee:      priorityFee,
		ComputeUnitLimit: limit,
		ComputeUnitPrice: price,
		TotalFee:         baseFee + priorityFee,
	}
}

// StrategyPrice 返回策略档位对应的 CU 单价（micro-lamports）。
func (c *Calculator) StrategyPrice(strategy Strategy) uint64 {
	p := c.cfg.StrategyPricesConf
	switch strategy {
	case StrategyLow:
		return p.Low
	case StrategyMedium:
		return p.Medium
	case StrategyHigh:
		return p.High
	default:
		return p.Urgent
	}
}

// CompareStrategies 返回所有档位的估算结果，供调用方排序比较。
func (c *Calculator) CompareStrategies(tx *domain.CompiledTransaction) []StrategyEstimate {
	out := make([]StrategyEstimate, 0, len(AllStrategies))
	for _, s := range AllStrategies {
		out = append(out, StrategyEstimate{Strategy: s, Estimate: c.Estimate(tx, s)})
	}
	return out
}

// RecommendStrategy 按紧迫程度查表返回策略档位。
func RecommendStrategy(urgency Urgency) Strategy {
	switch urgency {
	case UrgencyNotUrgent:
		return StrategyLow
	case UrgencyNormal:
		return StrategyMedium
	case UrgencyUrgent:
		return StrategyHigh
	default:
		return StrategyUrgent
	}
}

// OptimalFee 按费率百分位（0~100）映射到策略档位后估算。
// 百分位通常来自调用方统计的近期网络费率分布。
func (c *Calculator) OptimalFee(tx *domain.CompiledTransaction, percentile int) (Estimate, error) {
	if percentile < 0 || percentile > 100 {
		return Estimate{}, fmt.Errorf("got %d: %w", percentile, ErrInvalidPercentile)
	}

	var strategy Strategy
	switch {
	case percentile <= 33:
		strategy = StrategyLow
	case percentile <= 66:
		strategy = StrategyMedium
	case percentile <= 90:
		strategy = StrategyHigh
	default:
		strategy = StrategyUrgent
	}
	return c.Estimate(tx, strategy), nil
}

// EstimateComputeUnits 按交易结构启发式估算 CU 消耗。
// 实际消耗取决于程序逻辑，这里仅用于没有任何 compute budget 信息时的粗估。
func EstimateComputeUnits(tx *domain.CompiledTransaction) uint32 {
	const (
		baseCU         = 200
		perInstruction = 1000
		perAccount     = 100
		perDataByte    = 1
	)

	totalData := 0
	for i := range tx.Message.Instructions {
		totalData += len(tx.Message.Instructions[i].Data)
	}

	return uint32(baseCU +
		perInstruction*len(tx.Message.Instructions) +
		perAccount*len(tx.Message.AccountKeys) +
		perDataByte*totalData)
}

// CostPerByte 返回指定策略下每字节的费用（lamports/byte）。
func (c *Calculator) CostPerByte(tx *domain.CompiledTransaction, strategy Strategy) float64 {
	estimate := c.Estimate(tx, strategy)
	size := tx.Size()
	if size == 0 {
		return 0
	}
	return float64(estimate.TotalFee) / float64(size)
}
