package codec

import (
	"errors"
)

var (
	// ErrMalformedVarint 表示 compact-u16 编码非法：超长、非最小编码或数值溢出。
	ErrMalformedVarint = errors.New("malformed compact-u16")

	// ErrUnexpectedEOF 表示读取越过缓冲区末尾。
	ErrUnexpectedEOF = errors.New("unexpected end of buffer")
)

// AppendCompactU16 将 v 以 compact-u16 变长编码追加到 buf：
// 每字节低 7 位为数值位，高位为续读标记，最多 3 字节，且必须为最小字节数编码。
func AppendCompactU16(buf []byte, v uint16) []byte {
	switch {
	case v <= 0x7f:
		return append(buf, byte(v))
	case v <= 0x3fff:
		return append(buf, byte(v&0x7f)|0x80, byte(v>>7))
	default:
		return append(buf, byte(v&0x7f)|0x80, byte((v>>7)&0x7f)|0x80, byte(v>>14))
	}
}

// CompactU16Size 返回 v 的 compact-u16 编码长度（1~3 字节）。
// 与 AppendCompactU16 实际产生的字节数严格一致，供预估容量使用。
func CompactU16Size(v uint16) int {
	switch {
	case v <= 0x7f:
		return 1
	case v <= 0x3fff:
		return 2
	default:
		return 3
	}
}

// CompactLenSize 返回长度 n 作为 compact-u16 前缀时占用的字节数。
// n 超出 0xFFFF 属于调用方错误，编码阶段已由各自的长度上限拦截。
func CompactLenSize(n int) int {
	return CompactU16Size(uint16(n))
}
