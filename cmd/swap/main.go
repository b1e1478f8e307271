package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"cosmossdk.io/math"
	"go.uber.org/zap"

	"jupswap/pkg/config"
	"jupswap/pkg/engine"
	"jupswap/pkg/engine/native"
	"jupswap/pkg/jupiter"
	"jupswap/pkg/sol"
	"jupswap/pkg/subscription"
	"jupswap/pkg/wallet"
)

type SwapOutput struct {
	Engine     string `json:"engine"`
	Signature  string `json:"signature"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
}

type SwapError struct {
	Error string `json:"error"`
}

var (
	tokenTo      = flag.String("to", "", "Output token mint address (required)")
	tokenFrom    = flag.String("from", "", "Input token mint address (required)")
	amount       = flag.String("amount", "", "Input amount in smallest units (required)")
	engineName   = flag.String("engine", "", "Swap engine: jupiter or native (default: ENGINE env or jupiter)")
	rpcEndpoints = flag.String("rpc", "", "Comma-separated Solana RPC endpoints (reads from .env if not specified)")
	rateLimit    = flag.Int("ratelimit", 20, "RPC requests per second limit per endpoint (default: 20)")
	useJito      = flag.Bool("jito", false, "Submit the transaction through a Jito block engine")
	confirm      = flag.Bool("confirm", true, "Wait for on-chain confirmation before exiting (default: true)")
	quoteOnly    = flag.Bool("quote", false, "Fetch a quote without executing the swap")
	jsonOutput   = flag.Bool("json", true, "Output as JSON (default: true)")
	verbose      = flag.Bool("v", false, "Verbose logging")
)

func main() {
	// Load .env file
	if err := config.LoadEnv(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	flag.Parse()

	if *tokenTo == "" || *tokenFrom == "" || *amount == "" {
		fmt.Fprintln(os.Stderr, "Error: Missing required arguments")
		fmt.Fprintln(os.Stderr, "\nUsage:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nExample:")
		fmt.Fprintln(os.Stderr, "  swap -from So11111111111111111111111111111111111111112 \\")
		fmt.Fprintln(os.Stderr, "       -to EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v \\")
		fmt.Fprintln(os.Stderr, "       -amount 1000000000")
		os.Exit(1)
	}

	// Validate amount before handing it to the engine
	amountIn, ok := math.NewIntFromString(*amount)
	if !ok || amountIn.LTE(math.ZeroInt()) || !amountIn.IsUint64() {
		outputError("Invalid amount: must be a positive integer")
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
	}
	defer logger.Sync()

	ctx := context.Background()

	if *quoteOnly {
		if err := printQuote(ctx, logger, amountIn.Uint64()); err != nil {
			outputError(fmt.Sprintf("Quote failed: %v", err))
			os.Exit(1)
		}
		return
	}

	name := *engineName
	if name == "" {
		name = os.Getenv("ENGINE")
	}
	if name == "" {
		name = "jupiter"
	}

	switch name {
	case "jupiter":
		if err := loadJupiterEngine(ctx, logger); err != nil {
			outputError(fmt.Sprintf("Failed to initialize jupiter engine: %v", err))
			os.Exit(1)
		}
	case "native":
		eng, err := native.LoaderFromEnv(logger).Load(ctx)
		if err != nil {
			outputError(fmt.Sprintf("Failed to load native engine: %v", err))
			os.Exit(1)
		}
		engine.Default.Load(eng)
	default:
		outputError(fmt.Sprintf("Unknown engine %q (expected jupiter or native)", name))
		os.Exit(1)
	}

	result, err := engine.QuickSwap(ctx, *tokenTo, *tokenFrom, amountIn.Uint64())
	if err != nil {
		outputError(fmt.Sprintf("Swap failed: %v", err))
		os.Exit(1)
	}

	response := SwapOutput{
		Engine:     name,
		Signature:  result.Signature,
		InputMint:  *tokenFrom,
		OutputMint: *tokenTo,
		InAmount:   result.InAmount,
		OutAmount:  result.OutAmount,
	}

	if *jsonOutput {
		jsonData, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			outputError(fmt.Sprintf("Failed to marshal JSON: %v", err))
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	} else {
		fmt.Printf("\n=== Swap Results ===\n")
		fmt.Printf("Engine: %s\n", name)
		fmt.Printf("Signature: %s\n", result.Signature)
		fmt.Printf("Input: %s %s\n", result.InAmount, *tokenFrom)
		fmt.Printf("Output: %s %s\n", result.OutAmount, *tokenTo)
	}
}

// loadJupiterEngine wires the in-process engine and installs it as the
// default binding.
func loadJupiterEngine(ctx context.Context, logger *zap.Logger) error {
	settings := config.LoadSwapSettings()

	var endpoints []string
	if *rpcEndpoints != "" {
		endpoints = strings.Split(*rpcEndpoints, ",")
		for i := range endpoints {
			endpoints[i] = strings.TrimSpace(endpoints[i])
		}
	} else {
		endpoints = config.GetRPCEndpoints()
		if len(endpoints) == 0 {
			return fmt.Errorf("no RPC endpoints configured. Set RPC_ENDPOINTS in .env or use -rpc flag")
		}
	}

	jitoRpc := ""
	if *useJito {
		jitoRpc = config.GetJitoRPC()
		if jitoRpc == "" {
			return fmt.Errorf("-jito requires JITO_RPC in .env")
		}
	}

	pool, err := sol.NewRPCPool(ctx, endpoints, jitoRpc, *rateLimit)
	if err != nil {
		return fmt.Errorf("failed to create RPC pool: %w", err)
	}

	signer, err := wallet.FromEnv(settings.KeypairEnv, logger)
	if err != nil {
		return err
	}

	var confirmer jupiter.SignatureConfirmer
	if *confirm {
		c, err := subscription.NewConfirmer(ctx, endpoints[0], logger)
		if err != nil {
			log.Printf("Warning: WebSocket confirmation unavailable: %v", err)
		} else {
			confirmer = c
		}
	}

	engine.Default.Load(jupiter.NewEngine(jupiter.EngineOptions{
		Client:    jupiter.NewClient(config.GetJupiterAPI(), jupiter.WithLogger(logger)),
		Sender:    pool.GetClient(),
		Signer:    signer,
		Settings:  settings,
		Confirmer: confirmer,
		Blockhash: pool.GetClient(),
		UseJito:   *useJito,
		Logger:    logger,
	}))
	return nil
}

// printQuote fetches a quote from the aggregator without building or
// submitting a transaction.
func printQuote(ctx context.Context, logger *zap.Logger, amountIn uint64) error {
	settings := config.LoadSwapSettings()
	client := jupiter.NewClient(config.GetJupiterAPI(), jupiter.WithLogger(logger))

	quote, err := client.Quote(ctx, jupiter.QuoteParams{
		InputMint:        *tokenFrom,
		OutputMint:       *tokenTo,
		Amount:           amountIn,
		SlippageBps:      settings.SlippageBps,
		OnlyDirectRoutes: settings.OnlyDirectRoutes,
		SwapMode:         settings.SwapMode,
	})
	if err != nil {
		return err
	}

	if *jsonOutput {
		jsonData, err := json.MarshalIndent(quote, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(jsonData))
	} else {
		fmt.Printf("\n=== Quote Results ===\n")
		fmt.Printf("Input: %s %s\n", quote.InAmount, *tokenFrom)
		fmt.Printf("Output: %s %s\n", quote.OutAmount, *tokenTo)
		fmt.Printf("Minimum Output: %s\n", quote.OtherAmountThreshold)
		fmt.Printf("Price Impact: %s%%\n", quote.PriceImpactPct)
		fmt.Printf("Route hops: %d\n", len(quote.RoutePlan))
	}
	return nil
}

func outputError(msg string) {
	if *jsonOutput {
		errResp := SwapError{Error: msg}
		jsonData, _ := json.MarshalIndent(errResp, "", "  ")
		fmt.Fprintln(os.Stderr, string(jsonData))
	} else {
		log.Println("Error:", msg)
	}
}
