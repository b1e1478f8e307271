// Package subscription tracks submitted transactions over the Solana
// websocket API until they are confirmed or fail.
package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SignatureHandler is called once when a watched signature is
// processed. txErr carries the on-chain error, nil on success.
type SignatureHandler func(signature string, slot uint64, txErr error)

// WebSocketClient manages the websocket connection to a Solana node
// and its signature subscriptions, reconnecting and resubscribing on
// connection loss.
type WebSocketClient struct {
	url            string
	conn           *websocket.Conn
	mu             sync.RWMutex
	subscriptions  map[uint64]*signatureSub
	nextID         uint64
	reconnectDelay time.Duration
	ctx            context.Context
	cancel         context.CancelFunc
	connected      bool
	log            *zap.Logger
}

// signatureSub is a pending signature watch.
type signatureSub struct {
	id        uint64 // request id
	subID     uint64 // server-assigned subscription id
	signature string
	handler   SignatureHandler
}

// rpcRequest is a JSON-RPC request over the websocket.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse is a JSON-RPC response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// notificationMessage is a subscription notification.
type notificationMessage struct {
	JSONRPC string             `json:"jsonrpc"`
	Method  string             `json:"method"`
	Params  notificationParams `json:"params"`
}

type notificationParams struct {
	Result       signatureNotification `json:"result"`
	Subscription uint64                `json:"subscription"`
}

// signatureNotification carries the processed-signature payload.
type signatureNotification struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value struct {
		Err interface{} `json:"err"`
	} `json:"value"`
}

// WSEndpoint derives the websocket URL from an HTTP RPC endpoint.
func WSEndpoint(httpURL string) string {
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	default:
		return httpURL
	}
}

// NewWebSocketClient connects to the node and starts the reader and
// reconnection loops.
func NewWebSocketClient(ctx context.Context, wsURL string, log *zap.Logger) (*WebSocketClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	clientCtx, cancel := context.WithCancel(ctx)

	client := &WebSocketClient{
		url:            wsURL,
		subscriptions:  make(map[uint64]*signatureSub),
		reconnectDelay: 5 * time.Second,
		ctx:            clientCtx,
		cancel:         cancel,
		nextID:         1,
		log:            log,
	}

	if err := client.connect(); err != nil {
		cancel()
		return nil, err
	}

	go client.readMessages()
	go client.handleReconnection()

	return client, nil
}

// connect establishes the websocket connection.
func (c *WebSocketClient) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}

	c.conn = conn
	c.connected = true
	c.log.Info("websocket connected", zap.String("url", c.url))
	return nil
}

// SubscribeSignature watches a transaction signature at confirmed
// commitment. The handler fires once; the node drops the subscription
// after notifying.
func (c *WebSocketClient) SubscribeSignature(signature string, handler SignatureHandler) (uint64, error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscriptions[id] = &signatureSub{id: id, signature: signature, handler: handler}
	c.mu.Unlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]interface{}{"commitment": "confirmed"},
		},
	}

	if err := c.sendRequest(req); err != nil {
		c.mu.Lock()
		delete(c.subscriptions, id)
		c.mu.Unlock()
		return 0, err
	}
	return id, nil
}

// Unsubscribe drops a signature watch before it has fired.
func (c *WebSocketClient) Unsubscribe(id uint64) error {
	c.mu.Lock()
	sub, exists := c.subscriptions[id]
	if !exists {
		c.mu.Unlock()
		return nil
	}
	delete(c.subscriptions, id)
	subID := sub.subID
	c.mu.Unlock()

	if subID == 0 {
		// Never acknowledged by the server.
		return nil
	}

	return c.sendRequest(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "signatureUnsubscribe",
		Params:  []interface{}{subID},
	})
}

// sendRequest writes a JSON-RPC request to the connection.
func (c *WebSocketClient) sendRequest(req rpcRequest) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readMessages reads incoming messages until the client is closed.
func (c *WebSocketClient) readMessages() {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			c.log.Warn("websocket read error", zap.Error(err))
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			time.Sleep(100 * time.Millisecond)
			continue
		}

		c.handleMessage(message)
	}
}

// handleMessage dispatches a raw websocket message.
func (c *WebSocketClient) handleMessage(data []byte) {
	var notification notificationMessage
	if err := json.Unmarshal(data, &notification); err == nil && notification.Method == "signatureNotification" {
		c.handleSignatureNotification(notification)
		return
	}

	var response rpcResponse
	if err := json.Unmarshal(data, &response); err != nil {
		c.log.Warn("malformed websocket message", zap.Error(err))
		return
	}
	c.handleResponse(response)
}

// handleResponse records the server-assigned subscription id.
func (c *WebSocketClient) handleResponse(response rpcResponse) {
	if response.Error != nil {
		c.log.Warn("websocket rpc error",
			zap.Int("code", response.Error.Code),
			zap.String("message", response.Error.Message))
		return
	}

	var subID uint64
	if err := json.Unmarshal(response.Result, &subID); err != nil {
		return
	}

	c.mu.Lock()
	if sub, exists := c.subscriptions[response.ID]; exists {
		sub.subID = subID
	}
	c.mu.Unlock()
}

// handleSignatureNotification fires the handler for a processed
// signature and retires the subscription.
func (c *WebSocketClient) handleSignatureNotification(notification notificationMessage) {
	c.mu.Lock()
	var sub *signatureSub
	for _, s := range c.subscriptions {
		if s.subID == notification.Params.Subscription {
			sub = s
			break
		}
	}
	if sub != nil {
		delete(c.subscriptions, sub.id)
	}
	c.mu.Unlock()

	if sub == nil {
		return
	}

	var txErr error
	if raw := notification.Params.Result.Value.Err; raw != nil {
		encoded, _ := json.Marshal(raw)
		txErr = fmt.Errorf("transaction failed: %s", encoded)
	}
	sub.handler(sub.signature, notification.Params.Result.Context.Slot, txErr)
}

// handleReconnection redials and resubscribes after connection loss.
func (c *WebSocketClient) handleReconnection() {
	ticker := time.NewTicker(c.reconnectDelay)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			connected := c.connected
			c.mu.RUnlock()
			if connected {
				continue
			}

			if err := c.reconnect(); err != nil {
				c.log.Warn("websocket reconnect failed", zap.Error(err))
			} else {
				c.log.Info("websocket reconnected")
			}
		}
	}
}

// reconnect redials and replays pending signature subscriptions.
func (c *WebSocketClient) reconnect() error {
	if err := c.connect(); err != nil {
		return err
	}

	c.mu.Lock()
	pending := make([]*signatureSub, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		sub.subID = 0
		pending = append(pending, sub)
	}
	c.mu.Unlock()

	for _, sub := range pending {
		req := rpcRequest{
			JSONRPC: "2.0",
			ID:      sub.id,
			Method:  "signatureSubscribe",
			Params: []interface{}{
				sub.signature,
				map[string]interface{}{"commitment": "confirmed"},
			},
		}
		if err := c.sendRequest(req); err != nil {
			c.log.Warn("resubscribe failed",
				zap.String("signature", sub.signature), zap.Error(err))
		}
	}
	return nil
}

// Close shuts down the connection and loops.
func (c *WebSocketClient) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected reports whether the connection is up.
func (c *WebSocketClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
