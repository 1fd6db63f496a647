package questions

import (
	"context"
	"math/rand/v2"

	"github.com/mamathon/triviawager/internal/models"
)

// StaticSource serves shuffled picks from a fixed bank. Used when no
// generator endpoint is configured.
type StaticSource struct {
	Bank []models.QuestionItem
}

// NewStaticSource returns a source over the built-in bank.
func NewStaticSource() *StaticSource {
	return &StaticSource{Bank: defaultBank}
}

// Generate ignores the topic.
func (s *StaticSource) Generate(ctx context.Context, _ string) ([]models.QuestionItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.Bank) < Count {
		return nil, ErrBadResponse
	}
	out := make([]models.QuestionItem, 0, Count)
	for _, i := range rand.Perm(len(s.Bank))[:Count] {
		out = append(out, s.Bank[i])
	}
	return out, nil
}

var defaultBank = []models.QuestionItem{
	{Question: "In what year did the Berlin Wall fall?", Answer: 1989},
	{Question: "How many bones are in the adult human body?", Answer: 206},
	{Question: "How many keys does a standard piano have?", Answer: 88},
	{Question: "What is the boiling point of water at sea level in Fahrenheit?", Answer: 212},
	{Question: "How many countries are members of the United Nations?", Answer: 193},
	{Question: "In what year did Apollo 11 land on the Moon?", Answer: 1969},
	{Question: "How tall is Mount Everest in metres?", Answer: 8849},
	{Question: "How many minutes are in a week?", Answer: 10080},
	{Question: "How many squares are on a chessboard?", Answer: 64},
	{Question: "In what year was the first iPhone released?", Answer: 2007},
	{Question: "How many elements are in the periodic table?", Answer: 118},
	{Question: "How many kilometres long is a marathon, rounded down?", Answer: 42},
	{Question: "In what year did the Titanic sink?", Answer: 1912},
	{Question: "How many symphonies did Beethoven complete?", Answer: 9},
	{Question: "How many days does Mars take to orbit the Sun, rounded?", Answer: 687},
}
