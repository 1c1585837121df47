package ixbuilder

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tx-assembler-sol/internal/consts"
	"tx-assembler-sol/internal/logic/domain"
	"tx-assembler-sol/internal/types"
)

func pk(b byte) types.Pubkey {
	var p types.Pubkey
	p[0] = b
	return p
}

// 账户顺序严格等于调用顺序，标记按调用方法确定
func TestBuilderAccountOrder(t *testing.T) {
	ix := New(pk(1)).
		Signer(pk(2), true).
		Writable(pk(3), false).
		Readonly(pk(4)).
		Build()

	require.Len(t, ix.Accounts, 3)
	assert.Equal(t, domain.AccountMeta{Pubkey: pk(2), IsSigner: true, IsWritable: true}, ix.Accounts[0])
	assert.Equal(t, domain.AccountMeta{Pubkey: pk(3), IsSigner: false, IsWritable: true}, ix.Accounts[1])
	assert.Equal(t, domain.AccountMeta{Pubkey: pk(4), IsSigner: false, IsWritable: false}, ix.Accounts[2])
	assert.Equal(t, pk(1), ix.ProgramID)
}

// 同一地址重复追加不去重（去重由编译器负责）
func TestBuilderNoDedup(t *testing.T) {
	ix := New(pk(1)).Readonly(pk(2)).Readonly(pk(2)).Build()
	assert.Len(t, ix.Accounts, 2)
}

func TestBuilderDataAppend(t *testing.T) {
	ix := New(pk(1)).
		AppendU8(42).
		AppendU32(0x12345678).
		AppendU64(1000).
		Build()

	require.Len(t, ix.Data, 13)
	assert.Equal(t, byte(42), ix.Data[0])
	assert.Equal(t, uint32(0x12345678), binary.LittleEndian.Uint32(ix.Data[1:5]))
	assert.Equal(t, uint64(1000), binary.LittleEndian.Uint64(ix.Data[5:13]))
}

func TestBuilderSetDataReplaces(t *testing.T) {
	ix := New(pk(1)).
		AppendU8(1).
		SetData([]byte{7, 8}).
		AppendData([]byte{9}).
		Build()
	assert.Equal(t, []byte{7, 8, 9}, ix.Data)
}

// 零账户零数据的指令合法
func TestBuilderEmptyInstruction(t *testing.T) {
	ix := New(pk(1)).Build()
	assert.Empty(t, ix.Accounts)
	assert.Empty(t, ix.Data)
}

func TestBuilderAppendBorsh(t *testing.T) {
	type params struct {
		Amount uint64
		Flag   uint8
	}

	b := New(pk(1)).AppendU8(5)
	require.NoError(t, b.AppendBorsh(params{Amount: 300, Flag: 1}))
	ix := b.Build()

	require.Len(t, ix.Data, 1+8+1)

	var decoded params
	require.NoError(t, DecodeBorsh(&decoded, ix.Data[1:]))
	assert.Equal(t, uint64(300), decoded.Amount)
	assert.Equal(t, uint8(1), decoded.Flag)
}

func TestComputeBudgetInstructions(t *testing.T) {
	limit := SetComputeUnitLimit(200_000)
	assert.Equal(t, consts.ComputeBudgetProgram, limit.ProgramID)
	assert.Empty(t, limit.Accounts)
	require.Len(t, limit.Data, 5)
	assert.Equal(t, byte(ComputeBudgetSetUnitLimit), limit.Data[0])
	assert.Equal(t, uint32(200_000), binary.LittleEndian.Uint32(limit.Data[1:]))

	price := SetComputeUnitPrice(1234)
	require.Len(t, price.Data, 9)
	assert.Equal(t, byte(ComputeBudgetSetUnitPrice), price.Data[0])
	assert.Equal(t, uint64(1234), binary.LittleEndian.Uint64(price.Data[1:]))
}

func TestParseComputeBudget(t *testing.T) {
	msg := &domain.Message{
		AccountKeys: []types.Pubkey{pk(1), consts.ComputeBudgetProgram, pk(3)},
		Instructions: []domain.CompiledInstruction{
			{ProgramIDIndex: 1, Data: SetComputeUnitLimit(150_000).Data},
			{ProgramIDIndex: 2, Data: []byte{0x02, 1, 2, 3, 4}}, // 非 compute budget 程序，忽略
			{ProgramIDIndex: 1, Data: SetComputeUnitPrice(500).Data},
		},
	}

	params := ParseComputeBudget(msg)
	assert.True(t, params.HasUnitLimit)
	assert.Equal(t, uint32(150_000), params.UnitLimit)
	assert.True(t, params.HasUnitPrice)
	assert.Equal(t, uint64(500), params.UnitPrice)
}

func TestParseComputeBudgetAbsent(t *testing.T) {
	msg := &domain.Message{
		AccountKeys:  []types.Pubkey{pk(1), pk(2)},
		Instructions: []domain.CompiledInstruction{{ProgramIDIndex: 1, Data: []byte{0x02}}},
	}
	params := ParseComputeBudget(msg)
	assert.False(t, params.HasUnitLimit)
	assert.False(t, params.HasUnitPrice)
}

// 同类指令多条时取最后一条
func TestParseComputeBudgetLastWins(t *testing.T) {
	msg := &domain.Message{
		AccountKeys: []types.Pubkey{consts.ComputeBudgetProgram},
		Instructions: []domain.CompiledInstruction{
			{ProgramIDIndex: 0, Data: SetComputeUnitPrice(100).Data},
			{ProgramIDIndex: 0, Data: SetComputeUnitPrice(900).Data},
		},
	}
	assert.Equal(t, uint64(900), ParseComputeBudget(msg).UnitPrice)
}

func TestDiscriminator(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 99}

	disc, ok := ExtractDiscriminator(data)
	require.True(t, ok)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, disc)
	assert.True(t, MatchesDiscriminator(data, disc))
	assert.False(t, MatchesDiscriminator(data, [8]byte{9}))

	_, ok = ExtractDiscriminator([]byte{1, 2, 3})
	assert.False(t, ok)
}
