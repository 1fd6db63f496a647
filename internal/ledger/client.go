// internal/ledger/client.go
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrRPC marks failures reported by, or talking to, the ledger node.
var ErrRPC = errors.New("ledger rpc failed")

// Fee settings the node expects on every signed submission.
const (
	GasPrice    = 0.002
	TransferGas = 142225
)

// Config points the client at a ledger node and its status endpoints.
type Config struct {
	RPCURL      string
	TxStatusURL string
	BlockURL    string
	APIKey      string
	// Wallet signs transfers and blob submissions.
	Wallet  string
	Timeout time.Duration
}

// Client speaks JSON-RPC 2.0 to the ledger node.
type Client struct {
	cfg    Config
	http   *http.Client
	nextID atomic.Int64
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type rpcRequest struct {
	ID      int64         `json:"id"`
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// txOptions is the signer block attached to state-changing calls.
type txOptions struct {
	GasPrice      float64 `json:"gas_price"`
	IsGasPriceSet bool    `json:"is_gas_price_set"`
	Gas           uint64  `json:"gas,omitempty"`
	SignerAddress string  `json:"signer_address"`
}

func (c *Client) signer(gas uint64) txOptions {
	return txOptions{GasPrice: GasPrice, IsGasPriceSet: true, Gas: gas, SignerAddress: c.cfg.Wallet}
}

// call performs one JSON-RPC request and decodes result into out (if non-nil).
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{
		ID:      c.nextID.Add(1),
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RPCURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRPC, method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: reading response: %w", ErrRPC, method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d: %s", ErrRPC, method, resp.StatusCode, bytes.TrimSpace(raw))
	}

	var rr rpcResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRPC, method, err)
	}
	if rr.Error != nil {
		return fmt.Errorf("%w: %s: code %d: %s", ErrRPC, method, rr.Error.Code, rr.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rr.Result, out); err != nil {
		return fmt.Errorf("%w: %s: decoding result: %v", ErrRPC, method, err)
	}
	return nil
}

// getJSON fetches a plain JSON document (status endpoints are not JSON-RPC).
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
