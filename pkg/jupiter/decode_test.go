package jupiter

import (
	"encoding/base64"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinOutAmount(t *testing.T) {
	assert.Equal(t, uint64(9_950), MinOutAmount(10_000, 50))
	assert.Equal(t, uint64(10_000), MinOutAmount(10_000, 0))
	assert.Equal(t, uint64(0), MinOutAmount(10_000, 10_000))
	assert.Equal(t, uint64(0), MinOutAmount(10_000, 20_000))

	// No overflow near the top of the u64 range.
	const maxU64 = ^uint64(0)
	got := MinOutAmount(maxU64, 50)
	assert.Less(t, got, maxU64)
	assert.Greater(t, got, maxU64/2)
}

func TestInstructionToSolana(t *testing.T) {
	ix := Instruction{
		ProgramID: solana.TokenProgramID.String(),
		Accounts: []Account{
			{Pubkey: solana.SystemProgramID.String(), IsSigner: false, IsWritable: true},
			{Pubkey: solana.SysVarRentPubkey.String(), IsSigner: true, IsWritable: false},
		},
		Data: base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
	}

	converted, err := ix.ToSolana()
	require.NoError(t, err)
	assert.Equal(t, solana.TokenProgramID, converted.ProgramID())

	accounts := converted.Accounts()
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].IsWritable)
	assert.False(t, accounts[0].IsSigner)
	assert.True(t, accounts[1].IsSigner)

	data, err := converted.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestInstructionToSolana_Invalid(t *testing.T) {
	_, err := Instruction{ProgramID: "not-a-pubkey"}.ToSolana()
	assert.Error(t, err)

	_, err = Instruction{ProgramID: solana.TokenProgramID.String(), Data: "!!!"}.ToSolana()
	assert.Error(t, err)
}

func TestSwapInstructionsFlatten_Order(t *testing.T) {
	mk := func(data byte) Instruction {
		return Instruction{
			ProgramID: solana.TokenProgramID.String(),
			Data:      base64.StdEncoding.EncodeToString([]byte{data}),
		}
	}

	ledger := mk(2)
	cleanup := mk(5)
	si := &SwapInstructions{
		ComputeBudgetInstructions: []Instruction{mk(1)},
		TokenLedgerInstruction:    &ledger,
		SetupInstructions:         []Instruction{mk(3)},
		SwapInstruction:           mk(4),
		CleanupInstruction:        &cleanup,
	}

	flat, err := si.Flatten()
	require.NoError(t, err)
	require.Len(t, flat, 5)

	for i, want := range []byte{1, 2, 3, 4, 5} {
		data, err := flat[i].Data()
		require.NoError(t, err)
		assert.Equal(t, []byte{want}, data)
	}
}

func TestDecodeTransaction_RoundTrip(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			solana.NewInstruction(solana.MemoProgramID, solana.AccountMetaSlice{}, []byte("swap")),
		},
		solana.Hash{},
		solana.TransactionPayer(key.PublicKey()),
	)
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), decoded.Message.AccountKeys[0])
}

func TestDecodeTransaction_Invalid(t *testing.T) {
	_, err := DecodeTransaction("!!! not base64 !!!")
	assert.Error(t, err)

	_, err = DecodeTransaction(base64.StdEncoding.EncodeToString([]byte{0xFF, 0x01}))
	assert.Error(t, err)
}
