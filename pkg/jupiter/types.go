package jupiter

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Quote is a route quote returned by the aggregator.
type Quote struct {
	InputMint            string      `json:"inputMint"`
	OutputMint           string      `json:"outputMint"`
	InAmount             string      `json:"inAmount"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold"`
	SwapMode             string      `json:"swapMode"`
	SlippageBps          uint64      `json:"slippageBps"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []RoutePlan `json:"routePlan"`
}

// RoutePlan is one hop of a quoted route.
type RoutePlan struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  uint64   `json:"percent"`
}

// SwapInfo describes the AMM a route hop trades through.
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// SwapConfig holds per-swap options forwarded to the aggregator.
type SwapConfig struct {
	WrapAndUnwrapSOL bool
	FeeAccount       *solana.PublicKey
	TokenLedger      *solana.PublicKey
}

// swapRequest is the POST body for /swap and /swap-instructions.
type swapRequest struct {
	UserPublicKey           string  `json:"userPublicKey"`
	WrapAndUnwrapSol        bool    `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit bool    `json:"dynamicComputeUnitLimit"`
	DynamicSlippage         bool    `json:"dynamicSlippage"`
	FeeAccount              *string `json:"feeAccount,omitempty"`
	QuoteResponse           Quote   `json:"quoteResponse"`
}

// SwapResponse carries the serialized transactions for a quoted swap.
type SwapResponse struct {
	SetupTransaction   string `json:"setupTransaction,omitempty"`
	SwapTransaction    string `json:"swapTransaction"`
	CleanupTransaction string `json:"cleanupTransaction,omitempty"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight,omitempty"`
}

// SwapInstructions carries the decomposed instruction set for a
// quoted swap, used when the caller assembles its own transaction.
type SwapInstructions struct {
	TokenLedgerInstruction      *Instruction  `json:"tokenLedgerInstruction,omitempty"`
	ComputeBudgetInstructions   []Instruction `json:"computeBudgetInstructions"`
	SetupInstructions           []Instruction `json:"setupInstructions"`
	SwapInstruction             Instruction   `json:"swapInstruction"`
	CleanupInstruction          *Instruction  `json:"cleanupInstruction,omitempty"`
	AddressLookupTableAddresses []string      `json:"addressLookupTableAddresses"`
	ComputeUnitLimit            uint32        `json:"computeUnitLimit"`
	PrioritizationFeeLamports   uint64        `json:"prioritizationFeeLamports"`
	SimulationError             *string       `json:"simulationError,omitempty"`
}

// Instruction is an aggregator-encoded Solana instruction.
type Instruction struct {
	ProgramID string    `json:"programId"`
	Accounts  []Account `json:"accounts"`
	Data      string    `json:"data"` // base64
}

// Account is an account meta within an Instruction.
type Account struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// APIError is the aggregator's error envelope, surfaced verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jupiter api: %s", e.Message)
}
