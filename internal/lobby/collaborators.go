//go:generate go run go.uber.org/mock/mockgen -source=collaborators.go -destination=../mocks/mock_collaborators.go -package=mocks
package lobby

import (
	"context"

	"github.com/mamathon/triviawager/internal/models"
)

// QuestionSource produces the question set for a topic. Implementations must
// honour ctx's deadline.
type QuestionSource interface {
	Generate(ctx context.Context, topic string) ([]models.QuestionItem, error)
}

// Settler pays out a finished game's wager to the winner.
type Settler interface {
	Settle(ctx context.Context, winner string, amount int) error
}
