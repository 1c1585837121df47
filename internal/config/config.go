package config

import (
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"gopkg.in/yaml.v3"

	"tx-assembler-sol/internal/consts"
	"tx-assembler-sol/pkg/logger"
)

// LogConfig 表示日志配置。
type LogConfig struct {
	Format   string `yaml:"format"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `yaml:"log_dir"`  // 日志目录（可为相对路径或绝对路径）
	Level    string `yaml:"level"`    // 日志级别：debug / info / warn / error
	Compress bool   `yaml:"compress"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// StrategyPrices 为各档费用策略对应的 CU 单价（micro-lamports），要求单调不减。
type StrategyPrices struct {
	Low    uint64 `yaml:"low"`
	Medium uint64 `yaml:"medium"`
	High   uint64 `yaml:"high"`
	Urgent uint64 `yaml:"urgent"`
}

// FeeConfig 表示费用估算参数。
type FeeConfig struct {
	BaseFeePerSignature     uint64         `yaml:"base_fee_per_signature"`     // 每个签名的基础费用（lamports）
	DefaultComputeUnitLimit uint32         `yaml:"default_compute_unit_limit"` // 未设置 compute budget 时的默认 CU 上限
	StrategyPricesConf      StrategyPrices `yaml:"strategy_prices"`            // 各策略档位的 CU 单价
}

// TxAsmConfig 是主配置结构体。
type TxAsmConfig struct {
	LogConf LogConfig `yaml:"logger"` // 日志配置
	FeeConf FeeConfig `yaml:"fee"`    // 费用估算配置
}

// DefaultFeeConfig 返回主网常用默认值，配置文件缺省时使用。
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		BaseFeePerSignature:     consts.DefaultBaseFeePerSignature,
		DefaultComputeUnitLimit: consts.DefaultComputeUnitLimit,
		StrategyPricesConf: StrategyPrices{
			Low:    1,
			Medium: 100,
			High:   1000,
			Urgent: 5000,
		},
	}
}

// Validate 检查策略单价的单调性，防止配置出现 High 比 Low 便宜的倒挂。
func (c *FeeConfig) Validate() error {
	p := c.StrategyPricesConf
	if p.Low > p.Medium || p.Medium > p.High || p.High > p.Urgent {
		return fmt.Errorf("strategy prices must be non-decreasing: low=%d medium=%d high=%d urgent=%d",
			p.Low, p.Medium, p.High, p.Urgent)
	}
	return nil
}

// MustLoad 从 yaml 文件加载主配置，失败时 panic（进程启动路径）。
func MustLoad(path string) TxAsmConfig {
	var c TxAsmConfig
	conf.MustLoad(path, &c)
	return c
}

// LoadFeeConfigBytes 从内嵌/测试场景的原始 yaml 字节解析费用配置。
func LoadFeeConfigBytes(data []byte) (FeeConfig, error) {
	c := DefaultFeeConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return FeeConfig{}, fmt.Errorf("parse fee config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return FeeConfig{}, err
	}
	return c, nil
}
