package sol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func signedTestTransaction(t *testing.T, key solana.PrivateKey) *solana.Transaction {
	t.Helper()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			solana.NewInstruction(
				solana.MemoProgramID,
				solana.AccountMetaSlice{solana.Meta(key.PublicKey()).SIGNER()},
				[]byte("ping"),
			),
		},
		solana.Hash{},
		solana.TransactionPayer(key.PublicKey()),
	)
	require.NoError(t, err)

	_, err = tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(key.PublicKey()) {
			return &key
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestSendTransaction_JitoWireFormat(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	tx := signedTestTransaction(t, key)

	serialized, err := tx.MarshalBinary()
	require.NoError(t, err)
	wantSig := tx.Signatures[0]

	var gotMethod string
	var gotParams []interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotMethod = req.Method
		gotParams = req.Params
		fmt.Fprintf(w, `{"jsonrpc":"2.0","result":%q,"id":1}`, wantSig.String())
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), "http://localhost:8899", srv.URL, 20)
	require.NoError(t, err)

	sig, err := client.SendTransaction(context.Background(), tx, SendOptions{UseJito: true})
	require.NoError(t, err)
	require.Equal(t, wantSig, sig)

	require.Equal(t, "sendTransaction", gotMethod)
	require.NotEmpty(t, gotParams)

	// The first param must be the base64 transaction string, not a
	// wrapper object or base58 text.
	encoded, ok := gotParams[0].(string)
	require.True(t, ok, "first param must be a string, got %T", gotParams[0])
	require.Equal(t, base64.StdEncoding.EncodeToString(serialized), encoded)
}

func TestSendTransaction_JitoNotConfigured(t *testing.T) {
	// A dead endpoint: with no block engine configured, UseJito must
	// fall back to the RPC path rather than vanish silently.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client, err := NewClient(context.Background(), srv.URL, "", 20)
	require.NoError(t, err)

	key := solana.NewWallet().PrivateKey
	tx := signedTestTransaction(t, key)
	_, err = client.SendTransaction(context.Background(), tx, SendOptions{UseJito: true})
	require.Error(t, err)
}
