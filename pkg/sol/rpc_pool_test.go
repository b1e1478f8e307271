package sol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRPCPool_RequiresEndpoints(t *testing.T) {
	_, err := NewRPCPool(context.Background(), nil, "", 20)
	assert.Error(t, err)
}

func TestRPCPool_RoundRobin(t *testing.T) {
	endpoints := []string{
		"http://node-a.example:8899",
		"http://node-b.example:8899",
		"http://node-c.example:8899",
	}
	pool, err := NewRPCPool(context.Background(), endpoints, "", 20)
	require.NoError(t, err)
	require.Equal(t, 3, pool.Size())

	seen := make(map[string]int)
	for i := 0; i < 9; i++ {
		seen[pool.GetClient().Endpoint()]++
	}
	for _, endpoint := range endpoints {
		assert.Equal(t, 3, seen[endpoint], "endpoint %s", endpoint)
	}
}

func TestRPCPool_SingleClient(t *testing.T) {
	pool, err := NewRPCPool(context.Background(), []string{"http://node.example:8899"}, "", 20)
	require.NoError(t, err)

	first := pool.GetClient()
	for i := 0; i < 5; i++ {
		assert.Same(t, first, pool.GetClient())
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", 20)
	assert.Error(t, err)

	c, err := NewClient(context.Background(), "http://node.example:8899", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://node.example:8899", c.Endpoint())
}
