package txbuilder

import (
	"errors"
	"fmt"

	"tx-assembler-sol/internal/logic/compiler"
	"tx-assembler-sol/internal/logic/domain"
	"tx-assembler-sol/internal/signer"
	"tx-assembler-sol/internal/types"
	"tx-assembler-sol/pkg/logger"
)

var (
	// ErrBuilderConsumed 表示 Builder 已在一次 build 中移交所有权，不能再次 build。
	ErrBuilderConsumed = errors.New("transaction builder already consumed")

	// ErrMissingSigner 表示某个必需签名账户没有对应的签名者。
	ErrMissingSigner = errors.New("required signer not provided")

	// ErrUnexpectedSigner 表示提供的签名者不对应任何必需签名槽位。
	// 拒绝而非静默忽略，避免掩盖调用方传错密钥的问题。
	ErrUnexpectedSigner = errors.New("signer does not match any required signature slot")
)

// Builder 累加 payer、blockhash 与指令，并委托编译器产出交易。
// 单个 Builder 实例不支持并发修改；build 成功后内部状态视为已移交，
// 需要重复构建时应先 Clone。
type Builder struct {
	payer        types.Pubkey
	blockhash    types.Hash
	instructions []domain.Instruction
	consumed     bool
}

func New() *Builder {
	return &Builder{}
}

// Payer 设置费用支付者（账户表索引 0，强制 signer+writable）。
func (b *Builder) Payer(payer types.Pubkey) *Builder {
	b.payer = payer
	return b
}

// RecentBlockhash 设置 recent blockhash。
func (b *Builder) RecentBlockhash(blockhash types.Hash) *Builder {
	b.blockhash = blockhash
	return b
}

// AddInstruction 按顺序追加一条指令。
func (b *Builder) AddInstruction(ix domain.Instruction) *Builder {
	b.instructions = append(b.instructions, ix)
	return b
}

func (b *Builder) AddInstructions(ixs ...domain.Instruction) *Builder {
	b.instructions = append(b.instructions, ixs...)
	return b
}

// Clone 返回可独立 build 的深拷贝（原 Builder 是否已 consumed 不影响副本）。
func (b *Builder) Clone() *Builder {
	out := &Builder{payer: b.payer, blockhash: b.blockhash}
	out.instructions = make([]domain.Instruction, len(b.instructions))
	for i := range b.instructions {
		out.instructions[i] = b.instructions[i].Clone()
	}
	return out
}

// BuildUnsigned 编译交易，签名槽位全部留空。成功后 Builder 视为已消费。
func (b *Builder) BuildUnsigned() (*domain.CompiledTransaction, error) {
	msg, err := b.compile()
	if err != nil {
		return nil, err
	}
	b.consumed = true

	return &domain.CompiledTransaction{
		Message:    *msg,
		Signatures: make([]types.Signature, msg.Header.NumRequiredSignatures),
	}, nil
}

// BuildAndSign 编译交易并为每个必需签名账户填充签名。
// 签名者集合必须与必需签名账户精确匹配：缺失返回 ErrMissingSigner，
// 多余返回 ErrUnexpectedSigner。签名槽位按账户表位置填充。
func (b *Builder) BuildAndSign(signers ...signer.Signer) (*domain.CompiledTransaction, error) {
	msg, err := b.compile()
	if err != nil {
		return nil, err
	}

	required := int(msg.Header.NumRequiredSignatures)

	byPubkey := make(map[types.Pubkey]signer.Signer, len(signers))
	for _, s := range signers {
		byPubkey[s.Pubkey()] = s
	}

	// 多余签名者直接拒绝
	requiredSet := make(map[types.Pubkey]struct{}, required)
	for _, key := range msg.AccountKeys[:required] {
		requiredSet[key] = struct{}{}
	}
	for pubkey := range byPubkey {
		if _, ok := requiredSet[pubkey]; !ok {
			return nil, fmt.Errorf("signer %s: %w", pubkey, ErrUnexpectedSigner)
		}
	}

	messageBytes := msg.Bytes()
	signatures := make([]types.Signature, required)
	for i := 0; i < required; i++ {
		key := msg.AccountKeys[i]
		s, ok := byPubkey[key]
		if !ok {
			return nil, fmt.Errorf("account %s at index %d: %w", key, i, ErrMissingSigner)
		}
		sig, err := s.Sign(messageBytes)
		if err != nil {
			return nil, fmt.Errorf("sign with %s: %w", key, err)
		}
		signatures[i] = sig
	}

	b.consumed = true
	logger.Debugf("signed transaction: %d accounts, %d signatures, %d message bytes",
		len(msg.AccountKeys), required, len(messageBytes))

	return &domain.CompiledTransaction{Message: *msg, Signatures: signatures}, nil
}

func (b *Builder) compile() (*domain.Message, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	return compiler.Compile(b.payer, b.blockhash, b.instructions)
}
