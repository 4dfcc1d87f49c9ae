package questionnaire

import "time"

// AnswerCount is the fixed number of onboarding questions.
const AnswerCount = 3

// Answer is one (question, selected answer) pair.
type Answer struct {
	Question       string `json:"question,omitempty"`
	SelectedAnswer string `json:"selectedAnswer,omitempty"`
}

// Questionnaire is the onboarding response set of one user.
type Questionnaire struct {
	ID        string    `db:"id" json:"_id"`
	UserID    string    `db:"user_id" json:"userId"`
	Answers   []Answer  `db:"answers" json:"answers"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
