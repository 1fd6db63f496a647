package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// TransferResult is the subset of the node's transaction response we keep.
type TransferResult struct {
	Height int64  `json:"height"`
	TxHash string `json:"txhash"`
	Code   int    `json:"code"`
}

// Transfer sends amount from the house wallet to the given address.
func (c *Client) Transfer(ctx context.Context, to string, amount int) (*TransferResult, error) {
	if to == "" || amount <= 0 {
		return nil, errors.New("transfer needs a recipient and a positive amount")
	}
	var raw json.RawMessage
	params := []interface{}{to, strconv.Itoa(amount), c.signer(TransferGas)}
	if err := c.call(ctx, "state.Transfer", params, &raw); err != nil {
		return nil, err
	}

	var res TransferResult
	if err := json.Unmarshal(raw, &res); err != nil {
		// Some nodes answer with a bare hash.
		log.WithError(err).Debug("transfer result is not an object")
	}
	if res.Code != 0 {
		return &res, fmt.Errorf("%w: state.Transfer: tx %s failed with code %d", ErrRPC, res.TxHash, res.Code)
	}
	return &res, nil
}

// Settle pays a finished game's pot to its winner.
func (c *Client) Settle(ctx context.Context, winner string, amount int) error {
	res, err := c.Transfer(ctx, winner, amount)
	if err != nil {
		return fmt.Errorf("settling %d to %s: %w", amount, winner, err)
	}
	log.WithFields(log.Fields{"player": winner, "amount": amount, "tx": res.TxHash}).Info("prize transferred")
	return nil
}
