package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tx-assembler-sol/internal/logic/domain"
	"tx-assembler-sol/internal/logic/ixbuilder"
	"tx-assembler-sol/internal/types"
)

func pk(b byte) types.Pubkey {
	var p types.Pubkey
	p[0] = b
	return p
}

var testBlockhash = types.Hash{0xBB}

// 四桶排序：payer 之后依次为可写签名者、只读签名者、可写非签名者、只读非签名者
func TestAccountTableOrdering(t *testing.T) {
	payer := pk(1)
	program := pk(9)
	a, b, c, d := pk(2), pk(3), pk(4), pk(5)

	ix := ixbuilder.New(program).
		Readonly(d).           // 只读非签名
		Writable(c, false).    // 可写非签名
		Signer(b, false).      // 只读签名
		Signer(a, true).       // 可写签名
		Build()

	msg, err := Compile(payer, testBlockhash, []domain.Instruction{ix})
	require.NoError(t, err)

	assert.Equal(t, []types.Pubkey{payer, a, b, c, d, program}, msg.AccountKeys)
	assert.Equal(t, uint8(2), msg.Header.NumRequiredSignatures)
	assert.Equal(t, uint8(1), msg.Header.NumReadonlySignedAccounts)
	assert.Equal(t, uint8(2), msg.Header.NumReadonlyUnsignedAccounts) // d + program
}

// 桶内保持首次出现顺序
func TestBucketStableOrder(t *testing.T) {
	payer := pk(1)
	program := pk(9)

	ix1 := ixbuilder.New(program).Readonly(pk(5)).Readonly(pk(3)).Build()
	ix2 := ixbuilder.New(program).Readonly(pk(4)).Build()

	msg, err := Compile(payer, testBlockhash, []domain.Instruction{ix1, ix2})
	require.NoError(t, err)
	assert.Equal(t, []types.Pubkey{payer, pk(5), pk(3), pk(4), program}, msg.AccountKeys)
}

// 跨指令标记 OR 合并：合并后按最终桶定位，而非首次出现时的桶
func TestDedupMergeFlags(t *testing.T) {
	payer := pk(1)
	program := pk(9)
	x := pk(6)

	ix1 := ixbuilder.New(program).Readonly(x).Build()
	ix2 := ixbuilder.New(program).Signer(x, true).Build()

	msg, err := Compile(payer, testBlockhash, []domain.Instruction{ix1, ix2})
	require.NoError(t, err)

	// x 合并为可写签名者，排在 payer 之后
	assert.Equal(t, []types.Pubkey{payer, x, program}, msg.AccountKeys)
	assert.Equal(t, uint8(2), msg.Header.NumRequiredSignatures)
	assert.Equal(t, uint8(0), msg.Header.NumReadonlySignedAccounts)

	// 两条指令都指向同一个表索引
	assert.Equal(t, []uint8{1}, msg.Instructions[0].Accounts)
	assert.Equal(t, []uint8{1}, msg.Instructions[1].Accounts)
}

// 程序地址注册为只读非签名，但不会降级已有条目的标记
func TestProgramIDRegistration(t *testing.T) {
	payer := pk(1)
	program := pk(9)

	// program 同时作为可写账户被引用
	ix := ixbuilder.New(program).Writable(program, false).Build()

	msg, err := Compile(payer, testBlockhash, []domain.Instruction{ix})
	require.NoError(t, err)

	require.Len(t, msg.AccountKeys, 2)
	assert.Equal(t, program, msg.AccountKeys[1])
	// 可写非签名桶，而非只读
	assert.Equal(t, uint8(0), msg.Header.NumReadonlyUnsignedAccounts)
	assert.Equal(t, uint8(1), msg.Instructions[0].ProgramIDIndex)
}

// payer 被指令以弱标记引用时仍保持索引 0 与 signer+writable
func TestPayerAlwaysFirst(t *testing.T) {
	payer := pk(1)
	program := pk(9)

	ix := ixbuilder.New(program).Readonly(payer).Build()

	msg, err := Compile(payer, testBlockhash, []domain.Instruction{ix})
	require.NoError(t, err)

	assert.Equal(t, payer, msg.AccountKeys[0])
	assert.Equal(t, uint8(1), msg.Header.NumRequiredSignatures)
	assert.Equal(t, uint8(0), msg.Header.NumReadonlySignedAccounts)
	assert.Equal(t, []uint8{0}, msg.Instructions[0].Accounts)
}

func TestCompileErrors(t *testing.T) {
	program := pk(9)
	ix := ixbuilder.New(program).Build()

	_, err := Compile(types.Pubkey{}, testBlockhash, []domain.Instruction{ix})
	assert.ErrorIs(t, err, ErrMissingPayer)

	_, err = Compile(pk(1), types.Hash{}, []domain.Instruction{ix})
	assert.ErrorIs(t, err, ErrMissingBlockhash)

	_, err = Compile(pk(1), testBlockhash, nil)
	assert.ErrorIs(t, err, ErrEmptyInstructionList)
}

func TestTooManyAccounts(t *testing.T) {
	payer := pk(1)
	program := pk(2)

	b := ixbuilder.New(program)
	for i := 0; i < 256; i++ {
		var p types.Pubkey
		p[0] = 0xEE
		p[1] = byte(i)
		p[2] = byte(i >> 8)
		b.Readonly(p)
	}
	ix := b.Build()

	// payer + program + 256 个账户 > 256
	_, err := Compile(payer, testBlockhash, []domain.Instruction{ix})
	assert.ErrorIs(t, err, ErrTooManyAccounts)
}

func TestExactly256Accounts(t *testing.T) {
	payer := pk(1)
	program := pk(2)

	b := ixbuilder.New(program)
	for i := 0; i < 254; i++ {
		var p types.Pubkey
		p[0] = 0xEE
		p[1] = byte(i)
		b.Readonly(p)
	}
	ix := b.Build()

	msg, err := Compile(payer, testBlockhash, []domain.Instruction{ix})
	require.NoError(t, err)
	assert.Len(t, msg.AccountKeys, 256)
}

func TestInstructionDataTooLarge(t *testing.T) {
	payer := pk(1)
	ix := ixbuilder.New(pk(2)).SetData(make([]byte, 0x10000)).Build()

	_, err := Compile(payer, testBlockhash, []domain.Instruction{ix})
	assert.ErrorIs(t, err, domain.ErrInstructionDataTooLarge)
}

// 编译结果含指令索引改写
func TestCompiledInstructionIndices(t *testing.T) {
	payer := pk(1)
	program := pk(9)

	ix := ixbuilder.New(program).
		Signer(payer, true).
		Readonly(pk(7)).
		AppendU8(42).
		Build()

	msg, err := Compile(payer, testBlockhash, []domain.Instruction{ix})
	require.NoError(t, err)

	require.Len(t, msg.Instructions, 1)
	ci := msg.Instructions[0]
	assert.Equal(t, msg.AccountKeys[ci.ProgramIDIndex], program)
	assert.Equal(t, []uint8{0, 1}, ci.Accounts) // payer=0；pk(7) 先于 program 出现，同桶排前
	assert.Equal(t, []byte{42}, ci.Data)
}

func TestHeaderCountsLargeMix(t *testing.T) {
	payer := pk(1)
	program := pk(9)

	b := ixbuilder.New(program)
	for i := 0; i < 3; i++ {
		b.Signer(pk(byte(10+i)), true)
	}
	for i := 0; i < 2; i++ {
		b.Signer(pk(byte(20+i)), false)
	}
	for i := 0; i < 4; i++ {
		b.Writable(pk(byte(30+i)), false)
	}
	for i := 0; i < 5; i++ {
		b.Readonly(pk(byte(40 + i)))
	}

	msg, err := Compile(payer, testBlockhash, []domain.Instruction{b.Build()})
	require.NoError(t, err)

	assert.Equal(t, uint8(1+3+2), msg.Header.NumRequiredSignatures)
	assert.Equal(t, uint8(2), msg.Header.NumReadonlySignedAccounts)
	assert.Equal(t, uint8(5+1), msg.Header.NumReadonlyUnsignedAccounts) // 只读账户 + program
	assert.Len(t, msg.AccountKeys, 1+3+2+4+5+1)

	// 必需签名前缀恰好为所有签名账户
	for i := 0; i < int(msg.Header.NumRequiredSignatures); i++ {
		assert.True(t, msg.IsSignerIndex(i))
	}
}

func ExampleCompile() {
	payer := pk(1)
	ix := ixbuilder.New(pk(9)).Readonly(pk(5)).AppendU8(7).Build()

	msg, _ := Compile(payer, types.Hash{0xBB}, []domain.Instruction{ix})
	fmt.Println(len(msg.AccountKeys), msg.Header.NumRequiredSignatures)
	// Output: 3 1
}
