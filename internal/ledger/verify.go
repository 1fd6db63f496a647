// internal/ledger/verify.go
package ledger

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	BlockTime = 5 * time.Second
	// MaxTxAge is how old a stake transfer may be and still count.
	MaxTxAge = 120 * time.Second
)

// Verification is the outcome reported to clients for a stake transfer.
type Verification struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type txStatus struct {
	Result *struct {
		Status string  `json:"status"`
		Height flexInt `json:"height"`
	} `json:"result"`
}

type blockDoc struct {
	Result struct {
		Block struct {
			Header struct {
				Height flexInt `json:"height"`
			} `json:"header"`
		} `json:"block"`
	} `json:"result"`
}

// flexInt accepts both JSON numbers and numeric strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

// VerifyTransaction checks that hash is a committed transaction no older than
// MaxTxAge. Failures are reported in the result, never as an error.
func (c *Client) VerifyTransaction(ctx context.Context, hash string) Verification {
	if !strings.HasPrefix(hash, "0x") {
		return Verification{Message: "invalid tx_hash format"}
	}

	var status txStatus
	if err := c.getJSON(ctx, c.cfg.TxStatusURL+"?hash="+url.QueryEscape(hash), &status); err != nil {
		return Verification{Message: fmt.Sprintf("rpc request failed: %v", err)}
	}
	if status.Result == nil {
		return Verification{Message: "rpc response is not in the expected format"}
	}
	if status.Result.Status != "COMMITTED" {
		current := status.Result.Status
		if current == "" {
			current = "unknown"
		}
		return Verification{Message: "transaction is not COMMITTED, current status: " + current}
	}

	current, err := c.CurrentHeight(ctx)
	if err != nil {
		return Verification{Message: "COMMITTED transaction found but its age could not be checked"}
	}

	blocks := current - int64(status.Result.Height)
	if blocks < 0 {
		return Verification{Message: "invalid block height, transaction is ahead of the chain"}
	}
	age := time.Duration(blocks) * BlockTime
	if age > MaxTxAge {
		return Verification{Message: fmt.Sprintf("transaction is too old, age: %d seconds", int(age.Seconds()))}
	}
	return Verification{Valid: true, Message: fmt.Sprintf("COMMITTED transaction verified, age: %d seconds", int(age.Seconds()))}
}

// CurrentHeight reads the latest block height from the block endpoint.
func (c *Client) CurrentHeight(ctx context.Context) (int64, error) {
	var doc blockDoc
	if err := c.getJSON(ctx, c.cfg.BlockURL, &doc); err != nil {
		return 0, fmt.Errorf("%w: current height: %w", ErrRPC, err)
	}
	h := int64(doc.Result.Block.Header.Height)
	if h <= 0 {
		return 0, fmt.Errorf("%w: current height missing", ErrRPC)
	}
	return h, nil
}
