package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteURL_PinnedSlippage(t *testing.T) {
	bps := uint64(50)
	url := QuoteURL("https://quote-api.jup.ag/v6", QuoteParams{
		InputMint:        "So11111111111111111111111111111111111111112",
		OutputMint:       "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:           1_000_000_000,
		SlippageBps:      &bps,
		OnlyDirectRoutes: true,
		SwapMode:         "ExactIn",
	})

	assert.Contains(t, url, "https://quote-api.jup.ag/v6/quote?")
	assert.Contains(t, url, "inputMint=So11111111111111111111111111111111111111112")
	assert.Contains(t, url, "outputMint=EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	assert.Contains(t, url, "amount=1000000000")
	assert.Contains(t, url, "slippageBps=50")
	assert.Contains(t, url, "onlyDirectRoutes=true")
	assert.Contains(t, url, "swapMode=ExactIn")
	assert.Contains(t, url, "excludeDexes=Phoenix")
	assert.Contains(t, url, "restrictIntermediateTokens=true")
	assert.NotContains(t, url, "autoSlippage")
}

func TestQuoteURL_AutoSlippage(t *testing.T) {
	url := QuoteURL("https://quote-api.jup.ag/v6", QuoteParams{
		InputMint:  "So11111111111111111111111111111111111111112",
		OutputMint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:     500,
		SwapMode:   "ExactIn",
	})

	assert.Contains(t, url, "autoSlippage=true")
	assert.Contains(t, url, "maxAutoSlippageBps=100")
	assert.Contains(t, url, "autoSlippageCollisionUsdValue=1000")
	assert.NotContains(t, url, "slippageBps=")
}

func TestQuoteURL_Pure(t *testing.T) {
	p := QuoteParams{InputMint: "a", OutputMint: "b", Amount: 1, SwapMode: "ExactIn"}
	first := QuoteURL("http://api", p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, QuoteURL("http://api", p))
	}
}

func TestDecodeResponse_ErrorEnvelope(t *testing.T) {
	var out Quote
	err := decodeResponse([]byte(`{"error":"No routes found"}`), &out)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No routes found", apiErr.Message)
}

func TestDecodeResponse_Payload(t *testing.T) {
	var out Quote
	err := decodeResponse([]byte(`{"inAmount":"100","outAmount":"95","slippageBps":50}`), &out)
	require.NoError(t, err)
	assert.Equal(t, "100", out.InAmount)
	assert.Equal(t, "95", out.OutAmount)
	assert.Equal(t, uint64(50), out.SlippageBps)
}

func TestClient_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "mintIn", r.URL.Query().Get("inputMint"))
		json.NewEncoder(w).Encode(Quote{
			InputMint:  "mintIn",
			OutputMint: "mintOut",
			InAmount:   "1000",
			OutAmount:  "990",
			SwapMode:   "ExactIn",
			RoutePlan: []RoutePlan{
				{SwapInfo: SwapInfo{Label: "Orca"}, Percent: 100},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	quote, err := c.Quote(context.Background(), QuoteParams{
		InputMint: "mintIn", OutputMint: "mintOut", Amount: 1000, SwapMode: "ExactIn",
	})
	require.NoError(t, err)
	assert.Equal(t, "990", quote.OutAmount)
	require.Len(t, quote.RoutePlan, 1)
	assert.Equal(t, "Orca", quote.RoutePlan[0].SwapInfo.Label)
}

func TestClient_QuoteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Could not find any route"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Quote(context.Background(), QuoteParams{InputMint: "a", OutputMint: "b", Amount: 1})

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestClient_SwapRequestBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user-pubkey", body["userPublicKey"])
		assert.Equal(t, true, body["dynamicComputeUnitLimit"])
		assert.Equal(t, true, body["dynamicSlippage"])
		assert.Equal(t, true, body["wrapAndUnwrapSol"])

		json.NewEncoder(w).Encode(SwapResponse{SwapTransaction: "AAAA"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	resp, err := c.Swap(context.Background(), Quote{SwapMode: "ExactIn"}, "user-pubkey", SwapConfig{WrapAndUnwrapSOL: true})
	require.NoError(t, err)
	assert.Equal(t, "AAAA", resp.SwapTransaction)
}

func TestClient_SwapInstructionsSimulationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		simErr := "custom program error"
		json.NewEncoder(w).Encode(SwapInstructions{SimulationError: &simErr})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.SwapInstructions(context.Background(), Quote{}, "user", SwapConfig{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "simulation failed")
}
