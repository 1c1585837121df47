package compiler

import (
	"errors"
	"fmt"

	"tx-assembler-sol/internal/consts"
	"tx-assembler-sol/internal/logic/domain"
	"tx-assembler-sol/internal/types"
)

var (
	// ErrMissingPayer 表示未提供费用支付者。
	ErrMissingPayer = errors.New("fee payer not set")

	// ErrMissingBlockhash 表示未提供 recent blockhash。
	ErrMissingBlockhash = errors.New("recent blockhash not set")

	// ErrEmptyInstructionList 表示指令列表为空；无指令的交易视为无意义而非退化成功。
	ErrEmptyInstructionList = errors.New("no instructions provided")

	// ErrTooManyAccounts 表示账户表超出 256 条目上限（索引为单字节）。
	ErrTooManyAccounts = errors.New("account table exceeds 256 entries")
)

// stagedEntry 为账户表的暂存条目：合并后的标记 + 首次出现顺序。
type stagedEntry struct {
	pubkey     types.Pubkey
	isSigner   bool
	isWritable bool
	seq        int // 首次出现顺序，桶内排序依据
}

// Compile 将 payer、blockhash 与有序指令列表编译为单一账户表的消息。
//
// 账户表构造规则：
//  1. payer 固定占索引 0，强制 signer+writable；
//  2. 其余账户按标识符去重，标记按 OR 合并（任一引用为 true 即为 true）；
//  3. 程序地址以 readonly 非签名身份入表，与普通账户同样参与去重合并；
//  4. 索引 0 之后按四桶稳定分区排列：可写签名者、只读签名者、可写非签名者、
//     只读非签名者，桶内保持首次出现顺序。
//
// 头部三个计数由最终账户表推导，序列化后验证方可据此还原每个条目的标记。
func Compile(payer types.Pubkey, blockhash types.Hash, instructions []domain.Instruction) (*domain.Message, error) {
	if payer.IsZero() {
		return nil, ErrMissingPayer
	}
	if blockhash.IsZero() {
		return nil, ErrMissingBlockhash
	}
	if len(instructions) == 0 {
		return nil, ErrEmptyInstructionList
	}

	staged := make(map[types.Pubkey]*stagedEntry, len(instructions)*4)
	order := make([]*stagedEntry, 0, len(instructions)*4)

	upsert := func(pubkey types.Pubkey, isSigner, isWritable bool) {
		if entry, ok := staged[pubkey]; ok {
			entry.isSigner = entry.isSigner || isSigner
			entry.isWritable = entry.isWritable || isWritable
			return
		}
		entry := &stagedEntry{
			pubkey:     pubkey,
			isSigner:   isSigner,
			isWritable: isWritable,
			seq:        len(order),
		}
		staged[pubkey] = entry
		order = append(order, entry)
	}

	// payer 永远第一个入表，标记不受后续引用影响（只会 OR 到 true）
	upsert(payer, true, true)

	for i := range instructions {
		ix := &instructions[i]
		if err := ix.Validate(); err != nil {
			return nil, fmt.Errorf("instruction %d (program %s): %w", i, ix.ProgramID, err)
		}
		for _, meta := range ix.Accounts {
			upsert(meta.Pubkey, meta.IsSigner, meta.IsWritable)
		}
	}

	// 程序地址必须可被索引引用；若已作为普通账户入表则仅复用，不改变其标记
	for i := range instructions {
		upsert(instructions[i].ProgramID, false, false)
	}

	if len(order) > consts.MaxAccountKeys {
		return nil, fmt.Errorf("got %d accounts: %w", len(order), ErrTooManyAccounts)
	}

	// 四桶稳定分区；payer（seq 0）直接放在最前
	var writableSigners, readonlySigners, writableOthers, readonlyOthers []*stagedEntry
	for _, entry := range order[1:] {
		switch {
		case entry.isSigner && entry.isWritable:
			writableSigners = append(writableSigners, entry)
		case entry.isSigner:
			readonlySigners = append(readonlySigners, entry)
		case entry.isWritable:
			writableOthers = append(writableOthers, entry)
		default:
			readonlyOthers = append(readonlyOthers, entry)
		}
	}

	table := make([]*stagedEntry, 0, len(order))
	table = append(table, order[0])
	table = append(table, writableSigners...)
	table = append(table, readonlySigners...)
	table = append(table, writableOthers...)
	table = append(table, readonlyOthers...)

	accountKeys := make([]types.Pubkey, len(table))
	indexOf := make(map[types.Pubkey]uint8, len(table))
	var numSigners, numReadonlySigned, numReadonlyUnsigned uint8
	for i, entry := range table {
		accountKeys[i] = entry.pubkey
		indexOf[entry.pubkey] = uint8(i)
		if entry.isSigner {
			numSigners++
			if !entry.isWritable {
				numReadonlySigned++
			}
		} else if !entry.isWritable {
			numReadonlyUnsigned++
		}
	}

	compiled := make([]domain.CompiledInstruction, 0, len(instructions))
	for i := range instructions {
		ix := &instructions[i]
		ci := domain.CompiledInstruction{
			ProgramIDIndex: indexOf[ix.ProgramID],
			Accounts:       make([]uint8, 0, len(ix.Accounts)),
			Data:           append([]byte(nil), ix.Data...),
		}
		for _, meta := range ix.Accounts {
			ci.Accounts = append(ci.Accounts, indexOf[meta.Pubkey])
		}
		compiled = append(compiled, ci)
	}

	return &domain.Message{
		Header: domain.MessageHeader{
			NumRequiredSignatures:       numSigners,
			NumReadonlySignedAccounts:   numReadonlySigned,
			NumReadonlyUnsignedAccounts: numReadonlyUnsigned,
		},
		AccountKeys:     accountKeys,
		RecentBlockhash: blockhash,
		Instructions:    compiled,
	}, nil
}
