package codec

import (
	"encoding/binary"
	"fmt"

	"tx-assembler-sol/internal/types"
)

// Cursor 在固定字节切片上维护读取偏移。任何越界读取返回 ErrUnexpectedEOF，
// 此后游标位置不再可靠，调用方不应继续读取。
type Cursor struct {
	data []byte
	pos  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos 返回当前偏移（主要用于错误上下文与调试）。
func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

func (c *Cursor) Done() bool {
	return c.pos >= len(c.data)
}

// Take 读取 n 字节并前移游标，返回的切片与底层数据共享。
func (c *Cursor) Take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, c.pos, c.Remaining(), ErrUnexpectedEOF)
	}
	out := c.data[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

func (c *Cursor) U8() (byte, error) {
	b, err := c.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) U16() (uint16, error) {
	b, err := c.Take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) U32() (uint32, error) {
	b, err := c.Take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) U64() (uint64, error) {
	b, err := c.Take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}

// CompactU16 解码 compact-u16，要求规范编码：
// 非最小字节数编码、超过 3 字节或数值超出 0xFFFF 均返回 ErrMalformedVarint。
func (c *Cursor) CompactU16() (uint16, error) {
	start := c.pos

	b0, err := c.U8()
	if err != nil {
		return 0, err
	}
	if b0&0x80 == 0 {
		return uint16(b0), nil
	}

	b1, err := c.U8()
	if err != nil {
		return 0, err
	}
	if b1&0x80 == 0 {
		if b1 == 0 {
			// 第二字节为 0 说明单字节即可表示，属于过长编码
			return 0, fmt.Errorf("non-minimal compact-u16 at offset %d: %w", start, ErrMalformedVarint)
		}
		return uint16(b0&0x7f) | uint16(b1)<<7, nil
	}

	b2, err := c.U8()
	if err != nil {
		return 0, err
	}
	if b2&0x80 != 0 {
		return 0, fmt.Errorf("compact-u16 longer than 3 bytes at offset %d: %w", start, ErrMalformedVarint)
	}
	if b2 == 0 {
		return 0, fmt.Errorf("non-minimal compact-u16 at offset %d: %w", start, ErrMalformedVarint)
	}
	if b2 > 0x03 {
		// 14 位之上最多还剩 2 位，否则超出 u16 范围
		return 0, fmt.Errorf("compact-u16 overflow at offset %d: %w", start, ErrMalformedVarint)
	}
	return uint16(b0&0x7f) | uint16(b1&0x7f)<<7 | uint16(b2)<<14, nil
}

func (c *Cursor) Pubkey() (types.Pubkey, error) {
	b, err := c.Take(32)
	if err != nil {
		return types.Pubkey{}, err
	}
	var p types.Pubkey
	copy(p[:], b)
	return p, nil
}

func (c *Cursor) Hash() (types.Hash, error) {
	b, err := c.Take(32)
	if err != nil {
		return types.Hash{}, err
	}
	var h types.Hash
	copy(h[:], b)
	return h, nil
}

func (c *Cursor) Signature() (types.Signature, error) {
	b, err := c.Take(types.SignatureLength)
	if err != nil {
		return types.Signature{}, err
	}
	var s types.Signature
	copy(s[:], b)
	return s, nil
}
