package codec

import (
	"encoding/binary"

	"tx-assembler-sol/internal/types"
)

// Encoder 是可增长的输出缓冲，提供定宽整数、compact-u16 与 32 字节标识符的追加编码。
// 所有追加方法写入的字节数与对应的 *Size 函数严格一致。
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// NewEncoderSize 预分配 capacity，用于已知目标大小的序列化路径。
func NewEncoderSize(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Bytes 返回当前缓冲内容（与内部缓冲共享底层数组）。
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) Len() int {
	return len(e.buf)
}

func (e *Encoder) U8(v byte) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) U16(v uint16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *Encoder) U32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) U64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *Encoder) I64(v int64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v))
}

func (e *Encoder) CompactU16(v uint16) {
	e.buf = AppendCompactU16(e.buf, v)
}

// Pubkey 追加 32 字节标识符，不带长度前缀。
func (e *Encoder) Pubkey(p types.Pubkey) {
	e.buf = append(e.buf, p[:]...)
}

func (e *Encoder) Hash(h types.Hash) {
	e.buf = append(e.buf, h[:]...)
}

func (e *Encoder) Signature(s types.Signature) {
	e.buf = append(e.buf, s[:]...)
}

// Bytes 原样追加，不带长度前缀；需要长度前缀时由调用方先写 CompactU16。
func (e *Encoder) Append(data []byte) {
	e.buf = append(e.buf, data...)
}
