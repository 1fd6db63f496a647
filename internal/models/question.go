package models

// QuestionItem is one trivia prompt with a single integer answer.
type QuestionItem struct {
	Question string `json:"question"`
	Answer   int    `json:"answer"`
}
