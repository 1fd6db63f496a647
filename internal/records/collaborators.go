//go:generate go run go.uber.org/mock/mockgen -source=collaborators.go -destination=../mocks/mock_records.go -package=mocks
package records

import (
	"context"

	"github.com/mamathon/triviawager/internal/models"
)

// MatchStore persists the pointer rows for recorded matches.
type MatchStore interface {
	ReserveMatchID(ctx context.Context) (int64, error)
	InsertMatchRecord(ctx context.Context, rec models.MatchRecord) error
	GetMatchRecord(ctx context.Context, id int64) (*models.MatchRecord, error)
	GetPlayerMatches(ctx context.Context, wallet string) ([]models.MatchSummary, error)
}

// BlobStore holds full match documents on the ledger.
type BlobStore interface {
	SubmitBlob(ctx context.Context, namespace string, v interface{}) (uint64, error)
	GetBlob(ctx context.Context, height uint64, namespace string, out interface{}) error
}
