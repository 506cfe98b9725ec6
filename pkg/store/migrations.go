package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreatePartialUniqueIndexes creates constraints not expressible through the
// Ent schema DSL. A step may be retried, so (run_id, step_name) alone isn't
// unique, but a given attempt of a given step must never be recorded twice
// even under concurrent workers racing to persist the same retry.
func CreatePartialUniqueIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_step_executions_run_step_attempt
		ON step_executions (run_id, step_name, attempt)`)
	if err != nil {
		return fmt.Errorf("failed to create step attempt uniqueness index: %w", err)
	}

	return nil
}
