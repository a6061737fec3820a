package repository

import (
	"errors"

	"quiz-shell/internal/domain"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/sijms/go-ora/v2/network"
)

const (
	pqUniqueViolation    = "23505"
	oraUniqueViolation   = 1
	questionConstraintPG = "quizzes_question_key"
)

// isDuplicateQuestion reports whether err is the database rejecting a second
// quiz with the same question. Writers hold the table lock while allocating
// ids, so on oracle any unique violation is the question constraint.
func isDuplicateQuestion(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation && pqErr.Constraint == questionConstraintPG
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		// the id is the rowid, so its collisions report ErrConstraintPrimaryKey
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return oraErr.ErrCode == oraUniqueViolation
	}
	return false
}

func duplicateQuestionError() error {
	return domain.ValidationErrors{{Field: "question", Message: domain.MsgDuplicateQuestion}}
}
