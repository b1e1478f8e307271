package main

import (
	"time"

	"jupswap/pkg/jupiter"
)

type CachedQuote struct {
	InputMint            string              `json:"inputMint"`
	OutputMint           string              `json:"outputMint"`
	InAmount             string              `json:"inAmount"`
	OutAmount            string              `json:"outAmount"`
	PriceImpact          string              `json:"priceImpact,omitempty"`
	RoutePlan            []jupiter.RoutePlan `json:"routePlan"`
	SlippageBps          int                 `json:"slippageBps"`
	OtherAmountThreshold string              `json:"otherAmountThreshold"`
	LastUpdate           time.Time           `json:"lastUpdate"`
	TimeTaken            string              `json:"timeTaken"`
}

type SwapRequest struct {
	TokenTo   string `json:"tokenTo"`
	TokenFrom string `json:"tokenFrom"`
	Amount    string `json:"amount"`
}

type SwapResult struct {
	Engine    string `json:"engine"`
	Signature string `json:"signature"`
	InAmount  string `json:"inAmount"`
	OutAmount string `json:"outAmount"`
}

type ServiceError struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status       string    `json:"status"`
	Engine       string    `json:"engine"`
	LastUpdate   time.Time `json:"lastUpdate"`
	CachedRoutes int       `json:"cachedRoutes"`
	Uptime       string    `json:"uptime"`
}
