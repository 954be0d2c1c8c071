// Package sqlxrepos implements the repositories on postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/feeportal/backend/core/invoice"
)

// isUUID guards uuid columns: postgres rejects malformed ids instead of matching nothing.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func onlyUUIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

func getStudent(ctx context.Context, db *sqlx.DB, id string) (invoice.Student, error) {
	if !isUUID(id) {
		return invoice.Student{}, invoice.ErrStudentNotFound
	}
	var student invoice.Student
	err := db.GetContext(ctx, &student, `SELECT id, name, class, roll FROM students WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return invoice.Student{}, invoice.ErrStudentNotFound
		}
		return invoice.Student{}, errors.Wrap(err, "selecting student")
	}
	return student, nil
}
