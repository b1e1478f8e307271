package jupiter

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"jupswap/pkg/config"
	"jupswap/pkg/engine"
	"jupswap/pkg/sol"
)

// TransactionSender submits a signed transaction. Implemented by
// sol.Client.
type TransactionSender interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts sol.SendOptions) (solana.Signature, error)
}

// SignatureConfirmer waits for a submitted signature to confirm.
// Implemented by subscription.Confirmer.
type SignatureConfirmer interface {
	WaitForSignature(ctx context.Context, sig solana.Signature) error
}

// BlockhashProvider supplies a recent blockhash for locally assembled
// transactions. Implemented by sol.Client.
type BlockhashProvider interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// EngineOptions configure the in-process engine.
type EngineOptions struct {
	Client   *Client
	Sender   TransactionSender
	Signer   solana.PrivateKey
	Settings config.SwapSettings

	// Confirmer is optional; when nil the engine returns right after
	// submission without waiting for confirmation.
	Confirmer SignatureConfirmer

	// Blockhash is required when Settings.AssembleTransaction is set;
	// the serialized-transaction path does not use it.
	Blockhash BlockhashProvider

	// UseJito routes submission through a Jito block engine.
	UseJito bool

	Logger *zap.Logger
}

// Engine executes swaps in-process against the Jupiter aggregator:
// quote, fetch the serialized swap transaction, sign, submit, confirm.
type Engine struct {
	client    *Client
	sender    TransactionSender
	confirmer SignatureConfirmer
	blockhash BlockhashProvider
	signer    solana.PrivateKey
	settings  config.SwapSettings
	useJito   bool
	log       *zap.Logger
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates the in-process engine.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Settings.Timeout <= 0 {
		opts.Settings.Timeout = config.DefaultTransactionTimeout
	}
	return &Engine{
		client:    opts.Client,
		sender:    opts.Sender,
		confirmer: opts.Confirmer,
		blockhash: opts.Blockhash,
		signer:    opts.Signer,
		settings:  opts.Settings,
		useJito:   opts.UseJito,
		log:       opts.Logger,
	}
}

func (e *Engine) Name() string { return "jupiter" }

// Swap executes the full swap cycle for the request.
func (e *Engine) Swap(ctx context.Context, req engine.Request) (*engine.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.settings.Timeout)
	defer cancel()

	if _, err := solana.PublicKeyFromBase58(req.TokenFrom); err != nil {
		return nil, fmt.Errorf("%w: token from %q: %v", engine.ErrInvalidRequest, req.TokenFrom, err)
	}
	if _, err := solana.PublicKeyFromBase58(req.TokenTo); err != nil {
		return nil, fmt.Errorf("%w: token to %q: %v", engine.ErrInvalidRequest, req.TokenTo, err)
	}

	quote, err := e.client.Quote(ctx, QuoteParams{
		InputMint:        req.TokenFrom,
		OutputMint:       req.TokenTo,
		Amount:           req.Amount,
		SlippageBps:      e.settings.SlippageBps,
		OnlyDirectRoutes: e.settings.OnlyDirectRoutes,
		SwapMode:         e.settings.SwapMode,
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("quote received",
		zap.String("inAmount", quote.InAmount),
		zap.String("outAmount", quote.OutAmount),
		zap.String("priceImpactPct", quote.PriceImpactPct),
		zap.Int("hops", len(quote.RoutePlan)))

	tx, err := e.buildTransaction(ctx, quote)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(e.signer.PublicKey()) {
			return &e.signer
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := e.sender.SendTransaction(ctx, tx, sol.SendOptions{
		SkipPreflight: e.settings.SkipPreflight,
		MaxRetries:    e.settings.MaxRetries,
		UseJito:       e.useJito,
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("transaction submitted", zap.String("signature", sig.String()))

	if e.confirmer != nil {
		if err := e.confirmer.WaitForSignature(ctx, sig); err != nil {
			return nil, fmt.Errorf("swap %s: %w", sig, err)
		}
	}

	return &engine.Result{
		Signature: sig.String(),
		InAmount:  quote.InAmount,
		OutAmount: quote.OutAmount,
	}, nil
}

// buildTransaction obtains the swap transaction for a quote, either
// the serialized one from the aggregator or one assembled locally
// from its instruction set.
func (e *Engine) buildTransaction(ctx context.Context, quote *Quote) (*solana.Transaction, error) {
	user := e.signer.PublicKey().String()
	cfg := SwapConfig{WrapAndUnwrapSOL: e.settings.WrapAndUnwrapSOL}

	if !e.settings.AssembleTransaction {
		swapResp, err := e.client.Swap(ctx, *quote, user, cfg)
		if err != nil {
			return nil, err
		}
		return DecodeTransaction(swapResp.SwapTransaction)
	}

	if e.blockhash == nil {
		return nil, fmt.Errorf("transaction assembly requires a blockhash provider")
	}

	instr, err := e.client.SwapInstructions(ctx, *quote, user, cfg)
	if err != nil {
		return nil, err
	}
	ixs, err := instr.Flatten()
	if err != nil {
		return nil, err
	}
	recent, err := e.blockhash.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	return solana.NewTransaction(ixs, recent, solana.TransactionPayer(e.signer.PublicKey()))
}
