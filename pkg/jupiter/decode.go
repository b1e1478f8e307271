package jupiter

import (
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// DecodeTransaction deserializes a base64 transaction as returned by
// the /swap endpoint.
func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode transaction base64: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("deserialize transaction: %w", err)
	}
	return tx, nil
}

// ToSolana converts an aggregator-encoded instruction into a solana-go
// instruction.
func (ix Instruction) ToSolana() (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(ix.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id %q: %w", ix.ProgramID, err)
	}

	accounts := make(solana.AccountMetaSlice, 0, len(ix.Accounts))
	for _, acc := range ix.Accounts {
		pubkey, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", acc.Pubkey, err)
		}
		accounts = append(accounts, &solana.AccountMeta{
			PublicKey:  pubkey,
			IsSigner:   acc.IsSigner,
			IsWritable: acc.IsWritable,
		})
	}

	data, err := base64.StdEncoding.DecodeString(ix.Data)
	if err != nil {
		return nil, fmt.Errorf("decode instruction data: %w", err)
	}

	return solana.NewInstruction(programID, accounts, data), nil
}

// Flatten orders the instruction set for transaction assembly:
// compute budget, token ledger, setup, swap, cleanup.
func (si *SwapInstructions) Flatten() ([]solana.Instruction, error) {
	encoded := make([]Instruction, 0, len(si.ComputeBudgetInstructions)+len(si.SetupInstructions)+3)
	encoded = append(encoded, si.ComputeBudgetInstructions...)
	if si.TokenLedgerInstruction != nil {
		encoded = append(encoded, *si.TokenLedgerInstruction)
	}
	encoded = append(encoded, si.SetupInstructions...)
	encoded = append(encoded, si.SwapInstruction)
	if si.CleanupInstruction != nil {
		encoded = append(encoded, *si.CleanupInstruction)
	}

	out := make([]solana.Instruction, 0, len(encoded))
	for _, ix := range encoded {
		converted, err := ix.ToSolana()
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

// MinOutAmount applies a basis-point slippage tolerance to a quoted
// output amount. The intermediate product amount*(10000-bps) can
// exceed 64 bits for large amounts, so it is carried in 128 bits.
func MinOutAmount(amount, slippageBps uint64) uint64 {
	if slippageBps >= 10_000 {
		return 0
	}
	product := uint128.From64(amount).Mul64(10_000 - slippageBps)
	return product.Div64(10_000).Lo
}
