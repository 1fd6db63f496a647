package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBlobNotFound is returned when a height/namespace pair holds no data.
var ErrBlobNotFound = errors.New("blob not found")

type blob struct {
	Namespace string `json:"namespace"`
	Data      string `json:"data"`
}

// SubmitBlob stores v as a base64 JSON blob under namespace and returns the
// height it was included at.
func (c *Client) SubmitBlob(ctx context.Context, namespace string, v interface{}) (uint64, error) {
	doc, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encoding blob: %w", err)
	}
	params := []interface{}{
		[]blob{{Namespace: namespace, Data: base64.StdEncoding.EncodeToString(doc)}},
		c.signer(0),
	}
	var height uint64
	if err := c.call(ctx, "blob.Submit", params, &height); err != nil {
		return 0, err
	}
	return height, nil
}

// GetBlob decodes the first blob stored at height under namespace into out.
func (c *Client) GetBlob(ctx context.Context, height uint64, namespace string, out interface{}) error {
	var blobs []blob
	if err := c.call(ctx, "blob.GetAll", []interface{}{height, []string{namespace}}, &blobs); err != nil {
		return err
	}
	if len(blobs) == 0 || blobs[0].Data == "" {
		return fmt.Errorf("%w: height %d namespace %s", ErrBlobNotFound, height, namespace)
	}
	raw, err := base64.StdEncoding.DecodeString(blobs[0].Data)
	if err != nil {
		return fmt.Errorf("decoding blob: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding blob json: %w", err)
	}
	return nil
}
