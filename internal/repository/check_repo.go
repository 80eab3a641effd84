package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adyen/cartcheck/internal/models"
)

// ErrCheckNotFound is returned when no run matches the reference
var ErrCheckNotFound = errors.New("check run not found")

// CheckRepository handles database operations for check runs
type CheckRepository struct {
	db *sql.DB
}

// NewCheckRepository creates a new check repository on db
func NewCheckRepository(db *sql.DB) *CheckRepository {
	return &CheckRepository{db: db}
}

const checkColumns = `id, reference, base_url, scenario, status, items, total, sum, detail, created_at, updated_at`

// CreateCheck inserts a new run
func (r *CheckRepository) CreateCheck(ctx context.Context, run *models.CheckRun) error {
	query := `INSERT INTO cart_checks (` + checkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Reference,
		run.BaseURL,
		run.Scenario,
		run.Status,
		run.Items,
		run.Total,
		run.Sum,
		run.Detail,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create check run: %w", err)
	}
	return nil
}

// UpdateCheck stores the outcome fields of a finished run
func (r *CheckRepository) UpdateCheck(ctx context.Context, run *models.CheckRun) error {
	query := `
		UPDATE cart_checks
		SET status = $1, items = $2, total = $3, sum = $4, detail = $5, updated_at = $6
		WHERE reference = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		run.Status, run.Items, run.Total, run.Sum, run.Detail, run.UpdatedAt, run.Reference)
	if err != nil {
		return fmt.Errorf("failed to update check run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrCheckNotFound, run.Reference)
	}
	return nil
}

// GetCheckByReference retrieves a run by its reference
func (r *CheckRepository) GetCheckByReference(ctx context.Context, reference string) (*models.CheckRun, error) {
	query := `SELECT ` + checkColumns + ` FROM cart_checks WHERE reference = $1`

	run, err := scanCheck(r.db.QueryRowContext(ctx, query, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCheckNotFound, reference)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check run: %w", err)
	}
	return run, nil
}

// ListRecentChecks returns up to limit runs, newest first
func (r *CheckRepository) ListRecentChecks(ctx context.Context, limit int) ([]*models.CheckRun, error) {
	query := `SELECT ` + checkColumns + ` FROM cart_checks ORDER BY created_at DESC, reference DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list check runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.CheckRun
	for rows.Next() {
		run, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list check runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheck(row scanner) (*models.CheckRun, error) {
	run := &models.CheckRun{}
	err := row.Scan(
		&run.ID,
		&run.Reference,
		&run.BaseURL,
		&run.Scenario,
		&run.Status,
		&run.Items,
		&run.Total,
		&run.Sum,
		&run.Detail,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
