// pkg/audit/recorder.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/model"
)

// Recorder accumulates cleaning operations performed during a batch run and
// optionally persists them to a Postgres tracking table for after-the-fact
// review. With no DSN configured the recorder is in-memory only.
type Recorder struct {
	db     *sqlx.DB
	logger *zap.Logger
	ops    []model.CleaningOperation
}

// NewRecorder creates a recorder. An empty DSN disables persistence.
func NewRecorder(dsn string, logger *zap.Logger) (*Recorder, error) {
	if logger == nil {
		logger = zap.L().Named("audit")
	}

	r := &Recorder{logger: logger}
	if dsn == "" {
		logger.Info("Audit persistence disabled, recording in memory only")
		return r, nil
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect audit database: %w", err)
	}
	r.db = db

	if err := r.setupTrackingTable(); err != nil {
		return nil, fmt.Errorf("failed to setup tracking table: %w", err)
	}
	return r, nil
}

// setupTrackingTable ensures the cleaned_on_ingress tracking table exists
func (r *Recorder) setupTrackingTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS public.cleaned_on_ingress (
			id SERIAL PRIMARY KEY,
			source_name TEXT NOT NULL,
			field_name TEXT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			row_identifier TEXT NOT NULL,
			cleaning_operation TEXT NOT NULL,
			cleaning_reason TEXT NOT NULL,
			cleaned_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	r.logger.Info("Ensured cleaned_on_ingress table exists")
	return nil
}

// Record stores one cleaning operation
func (r *Recorder) Record(op model.CleaningOperation) {
	r.ops = append(r.ops, op)
}

// Count returns the number of operations recorded so far
func (r *Recorder) Count() int {
	return len(r.ops)
}

// Operations returns a copy of the recorded operations
func (r *Recorder) Operations() []model.CleaningOperation {
	out := make([]model.CleaningOperation, len(r.ops))
	copy(out, r.ops)
	return out
}

// Flush batch-inserts recorded operations inside a transaction and clears
// the in-memory buffer. Without a database it only clears the buffer.
func (r *Recorder) Flush(ctx context.Context) error {
	if len(r.ops) == 0 {
		return nil
	}
	if r.db == nil {
		r.ops = nil
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, context.Canceled) {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO public.cleaned_on_ingress
		(source_name, field_name, original_value, new_value,
		 row_identifier, cleaning_operation, cleaning_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range r.ops {
		_, err = stmt.ExecContext(ctx,
			op.SourceName,
			op.FieldName,
			toNullableString(op.OriginalValue),
			op.NewValue,
			op.RowIdentifier,
			op.CleaningOperation,
			op.CleaningReason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Recorded cleaning operations", zap.Int("count", len(r.ops)))
	r.ops = nil
	return nil
}

// Close releases the database connection if one was opened
func (r *Recorder) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// toNullableString safely converts an interface to a nullable string
func toNullableString(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf("%v", v)
	return &s
}
