package models

import (
	"time"
)

// Quiz is the row shape of the quizzes table.
type Quiz struct {
	ID        int64     `db:"id"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TableName returns the table the model is stored in.
func (Quiz) TableName() string {
	return "quizzes"
}

// Columns lists the selected columns with explicit lower-case aliases so that
// drivers reporting upper-case names (Oracle) still map onto the db tags.
func (Quiz) Columns() []string {
	return []string{
		`id "id"`,
		`question "question"`,
		`answer "answer"`,
		`created_at "created_at"`,
		`updated_at "updated_at"`,
	}
}
