package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dharsanguruparan/FormDrop/internal/form"
)

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// JobTitleRepository reads the open job titles, oldest first.
type JobTitleRepository struct {
	db Querier
}

// NewJobTitleRepository constructs a repository.
func NewJobTitleRepository(db Querier) *JobTitleRepository {
	return &JobTitleRepository{db: db}
}

var _ form.JobTitleSource = (*JobTitleRepository)(nil)

// JobTitles returns every job_title from the Company table ordered by
// creation time. Empty titles are skipped.
func (r *JobTitleRepository) JobTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT job_title FROM "Company" ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("select job titles: %w", err)
	}
	// CollectRows iterates and closes rows; RowTo[string] scans the single
	// column of each row.
	titles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan job titles: %w", err)
	}
	out := titles[:0]
	for _, t := range titles {
		if t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// Add inserts a job title. Used to seed local databases.
func (r *JobTitleRepository) Add(ctx context.Context, title string) error {
	if _, err := r.db.Exec(ctx, `INSERT INTO "Company" (job_title) VALUES ($1)`, title); err != nil {
		return fmt.Errorf("insert job title: %w", err)
	}
	return nil
}
