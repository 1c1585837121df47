package consts

const (
	// MaxTransactionSize 为单个交易包的大小上限（字节），超出无法上链。
	MaxTransactionSize = 1232

	// MaxAccountKeys 为账户表的最大条目数，索引为单字节所以不能超过 256。
	MaxAccountKeys = 256

	// MaxInstructionDataLen 为单条指令数据的最大长度（compact-u16 可表示范围）。
	MaxInstructionDataLen = 0xFFFF

	// DefaultBaseFeePerSignature 为每个签名的基础费用（lamports）。
	DefaultBaseFeePerSignature uint64 = 5000

	// DefaultComputeUnitLimit 为未显式设置 compute budget 时的默认 CU 上限。
	DefaultComputeUnitLimit uint32 = 200_000

	// MicroLamportsPerLamport 用于 CU price（micro-lamports）到 lamports 的换算。
	MicroLamportsPerLamport uint64 = 1_000_000
)
