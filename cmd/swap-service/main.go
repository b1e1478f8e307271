package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"jupswap/pkg/config"
	"jupswap/pkg/engine"
	"jupswap/pkg/jupiter"
	"jupswap/pkg/sol"
	"jupswap/pkg/subscription"
	"jupswap/pkg/supervisor"
	"jupswap/pkg/wallet"
)

var (
	rpcEndpoints    = flag.String("rpc", "", "Comma-separated Solana RPC endpoints (reads from .env if empty)")
	port            = flag.Int("port", 8080, "HTTP server port")
	refreshInterval = flag.Int("refresh", 30, "Quote refresh interval in seconds")
	rateLimit       = flag.Int("ratelimit", 20, "RPC requests per second per endpoint")
	slippageBps     = flag.Int("slippage", 50, "Slippage tolerance in basis points for cached quotes")
	useJito         = flag.Bool("jito", false, "Submit swap transactions through a Jito block engine")
)

var (
	// SOL (wrapped)
	WSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	// USDC
	USDC = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	// Default amounts to quote
	ONE_SOL  = "1000000000" // 1 SOL (9 decimals)
	TEN_USDC = "10000000"   // 10 USDC (6 decimals)
)

var (
	quoteCache *QuoteCache
	startTime  time.Time
)

func main() {
	// Load .env file
	if err := config.LoadEnv(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	flag.Parse()

	startTime = time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Parse RPC endpoints
	var endpoints []string
	if *rpcEndpoints != "" {
		endpoints = strings.Split(*rpcEndpoints, ",")
		for i := range endpoints {
			endpoints[i] = strings.TrimSpace(endpoints[i])
		}
	} else {
		endpoints = config.GetRPCEndpoints()
		if len(endpoints) == 0 {
			log.Fatalf("No RPC endpoints configured. Set RPC_ENDPOINTS in .env or use -rpc flag")
		}
	}

	log.Printf("Starting Jup Swap Service")
	log.Printf("Port: %d", *port)
	log.Printf("Refresh interval: %d seconds", *refreshInterval)
	log.Printf("RPC endpoints: %d", len(endpoints))
	log.Printf("Slippage: %d bps", *slippageBps)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	settings := config.LoadSwapSettings()

	jitoRpc := ""
	if *useJito {
		jitoRpc = config.GetJitoRPC()
		if jitoRpc == "" {
			log.Fatalf("-jito requires JITO_RPC in .env")
		}
	}

	pool, err := sol.NewRPCPool(ctx, endpoints, jitoRpc, *rateLimit)
	if err != nil {
		log.Fatalf("Failed to create RPC pool: %v", err)
	}

	signer, err := wallet.FromEnv(settings.KeypairEnv, logger)
	if err != nil {
		log.Fatalf("Failed to load signing key: %v", err)
	}

	var confirmer jupiter.SignatureConfirmer
	if c, err := subscription.NewConfirmer(ctx, endpoints[0], logger); err != nil {
		log.Printf("Warning: WebSocket confirmation unavailable: %v", err)
		log.Printf("Swaps will return without waiting for confirmation")
	} else {
		confirmer = c
		defer c.Close()
	}

	jupClient := jupiter.NewClient(config.GetJupiterAPI(), jupiter.WithLogger(logger))

	engine.Default.Load(jupiter.NewEngine(jupiter.EngineOptions{
		Client:    jupClient,
		Sender:    pool.GetClient(),
		Signer:    signer,
		Settings:  settings,
		Confirmer: confirmer,
		Blockhash: pool.GetClient(),
		UseJito:   *useJito,
		Logger:    logger,
	}))

	quoteCache = NewQuoteCache(jupClient, time.Duration(*refreshInterval)*time.Second, *slippageBps)

	// Pairs kept warm in the cache
	quotePairs := []QuotePair{
		{
			InputMint:  WSOL.String(),
			OutputMint: USDC.String(),
			Amount:     ONE_SOL,
			Label:      "SOL->USDC (1 SOL)",
		},
		{
			InputMint:  USDC.String(),
			OutputMint: WSOL.String(),
			Amount:     TEN_USDC,
			Label:      "USDC->SOL (10 USDC)",
		},
	}

	sup := supervisor.New(supervisor.Options{Logger: logger})
	sup.Add(supervisor.ChildFunc{
		ChildName: "quote-refresher",
		Fn: func(ctx context.Context) error {
			return quoteCache.RunPeriodicRefresh(ctx, quotePairs)
		},
	})
	if err := sup.Start(ctx); err != nil {
		log.Fatalf("Failed to start supervisor: %v", err)
	}

	// Setup HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("/swap", handleSwap)
	mux.HandleFunc("/quote", handleQuote)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/", handleRoot)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: corsMiddleware(mux),
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		cancel()
		sup.Stop()
	}()

	log.Printf("Server listening on http://localhost:%d", *port)
	log.Printf("Endpoints:")
	log.Printf("  POST /swap   {tokenTo, tokenFrom, amount}")
	log.Printf("  GET  /quote?input=<mint>&output=<mint>&amount=<amount>&slippageBps=<bps>")
	log.Printf("  GET  /health")
	log.Printf("  GET  /")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	allQuotes := quoteCache.GetAllCached()
	response := map[string]interface{}{
		"service":      "Jup Swap Service",
		"status":       "running",
		"cachedQuotes": len(allQuotes),
		"quotes":       allQuotes,
		"endpoints": map[string]string{
			"swap":   "POST /swap",
			"quote":  "/quote?input=<mint>&output=<mint>&amount=<amount>",
			"health": "/health",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func handleSwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.TokenTo == "" || req.TokenFrom == "" || req.Amount == "" {
		writeError(w, "Missing required fields: tokenTo, tokenFrom, amount", http.StatusBadRequest)
		return
	}

	amountIn, ok := math.NewIntFromString(req.Amount)
	if !ok || amountIn.LTE(math.ZeroInt()) || !amountIn.IsUint64() {
		writeError(w, "Invalid amount (must be a positive integer)", http.StatusBadRequest)
		return
	}

	result, err := engine.QuickSwap(r.Context(), req.TokenTo, req.TokenFrom, amountIn.Uint64())
	if err != nil {
		writeError(w, fmt.Sprintf("Swap failed: %v", err), http.StatusInternalServerError)
		return
	}

	eng, _ := engine.Default.Current()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SwapResult{
		Engine:    eng.Name(),
		Signature: result.Signature,
		InAmount:  result.InAmount,
		OutAmount: result.OutAmount,
	})
}

func handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	inputMint := r.URL.Query().Get("input")
	outputMint := r.URL.Query().Get("output")
	amount := r.URL.Query().Get("amount")
	slippageParam := r.URL.Query().Get("slippageBps")

	if inputMint == "" || outputMint == "" || amount == "" {
		writeError(w, "Missing required parameters: input, output, amount", http.StatusBadRequest)
		return
	}

	quote, exists := quoteCache.GetQuote(inputMint, outputMint, amount)
	if !exists {
		var err error
		quote, err = quoteCache.GetOrFetchQuote(r.Context(), inputMint, outputMint, amount)
		if err != nil {
			writeError(w, fmt.Sprintf("Failed to fetch quote: %v", err), http.StatusInternalServerError)
			return
		}
	}

	// Apply custom slippage if provided
	if slippageParam != "" {
		customSlippage, err := strconv.Atoi(slippageParam)
		if err != nil || customSlippage < 0 || customSlippage > 10000 {
			writeError(w, "Invalid slippageBps parameter (must be 0-10000)", http.StatusBadRequest)
			return
		}

		// Recalculate threshold with custom slippage
		if outAmount, err := strconv.ParseUint(quote.OutAmount, 10, 64); err == nil {
			minAmountOut := jupiter.MinOutAmount(outAmount, uint64(customSlippage))

			modifiedQuote := *quote
			modifiedQuote.SlippageBps = customSlippage
			modifiedQuote.OtherAmountThreshold = strconv.FormatUint(minAmountOut, 10)
			quote = &modifiedQuote
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quote)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	allQuotes := quoteCache.GetAllCached()

	var lastUpdate time.Time
	for _, quote := range allQuotes {
		if quote.LastUpdate.After(lastUpdate) {
			lastUpdate = quote.LastUpdate
		}
	}

	engineName := "none"
	if eng, err := engine.Default.Current(); err == nil {
		engineName = eng.Name()
	}

	health := HealthResponse{
		Status:       "healthy",
		Engine:       engineName,
		LastUpdate:   lastUpdate,
		CachedRoutes: len(allQuotes),
		Uptime:       time.Since(startTime).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ServiceError{Error: message})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
