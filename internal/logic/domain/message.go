package domain

import (
	"fmt"

	"tx-assembler-sol/internal/codec"
	"tx-assembler-sol/internal/types"
)

// MessageHeader 的三个计数由账户表推导而来，配合表内位置可完整还原每个账户的
// signer/writable 标记，序列化形态中无需逐账户标志位。
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

func (h MessageHeader) Serialize(enc *codec.Encoder) {
	enc.U8(h.NumRequiredSignatures)
	enc.U8(h.NumReadonlySignedAccounts)
	enc.U8(h.NumReadonlyUnsignedAccounts)
}

func (h MessageHeader) ByteSize() int {
	return 3
}

// CompiledInstruction 表示账户已改写为表索引的指令。
type CompiledInstruction struct {
	ProgramIDIndex uint8   // 程序地址在账户表中的索引
	Accounts       []uint8 // 账户表索引列表，顺序与原指令一致
	Data           []byte
}

func (ci *CompiledInstruction) Serialize(enc *codec.Encoder) {
	enc.U8(ci.ProgramIDIndex)
	enc.CompactU16(uint16(len(ci.Accounts)))
	enc.Append(ci.Accounts)
	enc.CompactU16(uint16(len(ci.Data)))
	enc.Append(ci.Data)
}

func (ci *CompiledInstruction) ByteSize() int {
	return 1 +
		codec.CompactLenSize(len(ci.Accounts)) + len(ci.Accounts) +
		codec.CompactLenSize(len(ci.Data)) + len(ci.Data)
}

func (ci *CompiledInstruction) Clone() CompiledInstruction {
	out := CompiledInstruction{ProgramIDIndex: ci.ProgramIDIndex}
	out.Accounts = append([]uint8(nil), ci.Accounts...)
	out.Data = append([]byte(nil), ci.Data...)
	return out
}

// Message 是编译后的交易消息：头部 + 去重有序账户表 + blockhash + 指令列表。
// 签名即对 Bytes() 产出的字节序列进行。
type Message struct {
	Header          MessageHeader
	AccountKeys     []types.Pubkey
	RecentBlockhash types.Hash
	Instructions    []CompiledInstruction
}

func (m *Message) Serialize(enc *codec.Encoder) {
	m.Header.Serialize(enc)

	enc.CompactU16(uint16(len(m.AccountKeys)))
	for _, key := range m.AccountKeys {
		enc.Pubkey(key)
	}

	enc.Hash(m.RecentBlockhash)

	enc.CompactU16(uint16(len(m.Instructions)))
	for i := range m.Instructions {
		m.Instructions[i].Serialize(enc)
	}
}

func (m *Message) ByteSize() int {
	size := m.Header.ByteSize() +
		codec.CompactLenSize(len(m.AccountKeys)) + len(m.AccountKeys)*32 +
		32 +
		codec.CompactLenSize(len(m.Instructions))
	for i := range m.Instructions {
		size += m.Instructions[i].ByteSize()
	}
	return size
}

// Bytes 返回待签名的消息字节序列。
func (m *Message) Bytes() []byte {
	enc := codec.NewEncoderSize(m.ByteSize())
	m.Serialize(enc)
	return enc.Bytes()
}

func (m *Message) Clone() Message {
	out := Message{Header: m.Header, RecentBlockhash: m.RecentBlockhash}
	out.AccountKeys = append([]types.Pubkey(nil), m.AccountKeys...)
	out.Instructions = make([]CompiledInstruction, len(m.Instructions))
	for i := range m.Instructions {
		out.Instructions[i] = m.Instructions[i].Clone()
	}
	return out
}

// IsSignerIndex 判断账户表中 idx 位置是否要求签名（表前缀为签名账户）。
func (m *Message) IsSignerIndex(idx int) bool {
	return idx < int(m.Header.NumRequiredSignatures)
}

// IsWritableIndex 按头部计数与表位置还原 idx 账户的 writable 标记。
func (m *Message) IsWritableIndex(idx int) bool {
	numSigned := int(m.Header.NumRequiredSignatures)
	numWritableSigned := numSigned - int(m.Header.NumReadonlySignedAccounts)
	if idx < numSigned {
		return idx < numWritableSigned
	}
	numUnsigned := len(m.AccountKeys) - numSigned
	numWritableUnsigned := numUnsigned - int(m.Header.NumReadonlyUnsignedAccounts)
	return idx-numSigned < numWritableUnsigned
}

// CompiledTransaction 表示编译完成的交易：消息 + 签名槽位。
// 编译后除填充空签名槽外不可变；填充签名不会改变大小与账户表。
type CompiledTransaction struct {
	Message    Message
	Signatures []types.Signature // 每个必需签名者一个 64 字节槽位，初始为全 0
}

// Serialize 输出完整 wire 格式：compact 长度前缀的签名列表 + 消息。
func (tx *CompiledTransaction) Serialize() []byte {
	enc := codec.NewEncoderSize(tx.Size())
	enc.CompactU16(uint16(len(tx.Signatures)))
	for _, sig := range tx.Signatures {
		enc.Signature(sig)
	}
	tx.Message.Serialize(enc)
	return enc.Bytes()
}

// Size 返回序列化后的总字节数，与 Serialize 产出严格一致。
func (tx *CompiledTransaction) Size() int {
	return codec.CompactLenSize(len(tx.Signatures)) +
		len(tx.Signatures)*types.SignatureLength +
		tx.Message.ByteSize()
}

// IsSigned 判断是否所有签名槽均已填充。
func (tx *CompiledTransaction) IsSigned() bool {
	for _, sig := range tx.Signatures {
		if sig.IsZero() {
			return false
		}
	}
	return len(tx.Signatures) > 0
}

// HasFilledSignature 判断是否存在至少一个已填充的签名槽。
func (tx *CompiledTransaction) HasFilledSignature() bool {
	for _, sig := range tx.Signatures {
		if !sig.IsZero() {
			return true
		}
	}
	return false
}

func (tx *CompiledTransaction) Clone() *CompiledTransaction {
	out := &CompiledTransaction{Message: tx.Message.Clone()}
	out.Signatures = append([]types.Signature(nil), tx.Signatures...)
	return out
}

// DecodeTransaction 从 wire 格式字节解码交易，布局校验失败返回具体错误。
func DecodeTransaction(data []byte) (*CompiledTransaction, error) {
	cur := codec.NewCursor(data)

	numSigs, err := cur.CompactU16()
	if err != nil {
		return nil, fmt.Errorf("decode signature count: %w", err)
	}
	signatures := make([]types.Signature, 0, numSigs)
	for i := 0; i < int(numSigs); i++ {
		sig, err := cur.Signature()
		if err != nil {
			return nil, fmt.Errorf("decode signature %d: %w", i, err)
		}
		signatures = append(signatures, sig)
	}

	msg, err := decodeMessage(cur)
	if err != nil {
		return nil, err
	}

	return &CompiledTransaction{Message: *msg, Signatures: signatures}, nil
}

func decodeMessage(cur *codec.Cursor) (*Message, error) {
	var msg Message

	numRequired, err := cur.U8()
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	numReadonlySigned, err := cur.U8()
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	numReadonlyUnsigned, err := cur.U8()
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	msg.Header = MessageHeader{
		NumRequiredSignatures:       numRequired,
		NumReadonlySignedAccounts:   numReadonlySigned,
		NumReadonlyUnsignedAccounts: numReadonlyUnsigned,
	}

	numKeys, err := cur.CompactU16()
	if err != nil {
		return nil, fmt.Errorf("decode account key count: %w", err)
	}
	msg.AccountKeys = make([]types.Pubkey, 0, numKeys)
	for i := 0; i < int(numKeys); i++ {
		key, err := cur.Pubkey()
		if err != nil {
			return nil, fmt.Errorf("decode account key %d: %w", i, err)
		}
		msg.AccountKeys = append(msg.AccountKeys, key)
	}

	msg.RecentBlockhash, err = cur.Hash()
	if err != nil {
		return nil, fmt.Errorf("decode recent blockhash: %w", err)
	}

	numIxs, err := cur.CompactU16()
	if err != nil {
		return nil, fmt.Errorf("decode instruction count: %w", err)
	}
	msg.Instructions = make([]CompiledInstruction, 0, numIxs)
	for i := 0; i < int(numIxs); i++ {
		ci, err := decodeCompiledInstruction(cur)
		if err != nil {
			return nil, fmt.Errorf("decode instruction %d: %w", i, err)
		}
		msg.Instructions = append(msg.Instructions, *ci)
	}

	return &msg, nil
}

func decodeCompiledInstruction(cur *codec.Cursor) (*CompiledInstruction, error) {
	var ci CompiledInstruction

	programIdx, err := cur.U8()
	if err != nil {
		return nil, err
	}
	ci.ProgramIDIndex = programIdx

	numAccounts, err := cur.CompactU16()
	if err != nil {
		return nil, err
	}
	accounts, err := cur.Take(int(numAccounts))
	if err != nil {
		return nil, err
	}
	ci.Accounts = append([]uint8(nil), accounts...)

	dataLen, err := cur.CompactU16()
	if err != nil {
		return nil, err
	}
	data, err := cur.Take(int(dataLen))
	if err != nil {
		return nil, err
	}
	ci.Data = append([]byte(nil), data...)

	return &ci, nil
}
