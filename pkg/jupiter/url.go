package jupiter

import (
	"net/url"
	"strconv"
)

// QuoteParams are the inputs to a quote request.
type QuoteParams struct {
	InputMint  string
	OutputMint string
	Amount     uint64

	// SlippageBps pins the slippage tolerance. Nil requests auto
	// slippage capped at 100 bps.
	SlippageBps *uint64

	OnlyDirectRoutes bool
	SwapMode         string
}

// autoSlippageCollisionUSD is the USD value the aggregator uses when
// estimating auto-slippage collision cost.
const autoSlippageCollisionUSD = "1000"

// QuoteURL builds the quote request URL. It is a pure function of the
// base URL and params: identical inputs yield an identical URL.
// Phoenix is excluded and intermediate tokens are restricted, matching
// the route constraints quick swaps are executed under.
func QuoteURL(baseURL string, p QuoteParams) string {
	q := url.Values{}
	q.Set("inputMint", p.InputMint)
	q.Set("outputMint", p.OutputMint)
	q.Set("amount", strconv.FormatUint(p.Amount, 10))
	q.Set("onlyDirectRoutes", strconv.FormatBool(p.OnlyDirectRoutes))
	q.Set("swapMode", p.SwapMode)
	q.Set("excludeDexes", "Phoenix")
	q.Set("restrictIntermediateTokens", "true")

	if p.SlippageBps != nil {
		q.Set("slippageBps", strconv.FormatUint(*p.SlippageBps, 10))
	} else {
		q.Set("autoSlippage", "true")
		q.Set("maxAutoSlippageBps", "100")
		q.Set("autoSlippageCollisionUsdValue", autoSlippageCollisionUSD)
	}

	return baseURL + "/quote?" + q.Encode()
}
