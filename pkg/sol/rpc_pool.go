package sol

import (
	"context"
	"fmt"
	"sync/atomic"
)

// RPCPool distributes requests across multiple rate-limited RPC
// clients in round-robin order.
type RPCPool struct {
	clients []*Client
	index   atomic.Uint64
}

// NewRPCPool creates a pool with one client per endpoint. All clients
// share the Jito block engine URL and per-endpoint rate limit.
func NewRPCPool(ctx context.Context, endpoints []string, jitoRpc string, reqLimitPerSecond int) (*RPCPool, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one rpc endpoint is required")
	}

	pool := &RPCPool{clients: make([]*Client, 0, len(endpoints))}
	for _, endpoint := range endpoints {
		client, err := NewClient(ctx, endpoint, jitoRpc, reqLimitPerSecond)
		if err != nil {
			return nil, err
		}
		pool.clients = append(pool.clients, client)
	}
	return pool, nil
}

// GetClient returns the next client in round-robin order.
func (p *RPCPool) GetClient() *Client {
	if len(p.clients) == 1 {
		return p.clients[0]
	}
	idx := p.index.Add(1) % uint64(len(p.clients))
	return p.clients[idx]
}

// Size returns the number of clients in the pool.
func (p *RPCPool) Size() int {
	return len(p.clients)
}
