package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	values []string
	idx    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return []any{r.values[r.idx-1]}, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.values) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.values[r.idx-1]
	return nil
}

type fakeDB struct {
	rows    *fakeRows
	err     error
	sql     string
	execArg any
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.sql = sql
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.execArg = args[0]
	return pgconn.CommandTag{}, f.err
}

func TestJobTitles(t *testing.T) {
	db := &fakeDB{rows: &fakeRows{values: []string{"Backend Engineer", "", "Designer"}}}
	titles, err := NewJobTitleRepository(db).JobTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Backend Engineer", "Designer"}, titles)
	assert.Contains(t, db.sql, `ORDER BY created_at ASC`)
	assert.True(t, db.rows.closed)
}

func TestJobTitlesQueryError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection refused")}
	_, err := NewJobTitleRepository(db).JobTitles(context.Background())
	assert.ErrorContains(t, err, "select job titles")
}

func TestAddJobTitle(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewJobTitleRepository(db).Add(context.Background(), "Welder"))
	assert.Equal(t, "Welder", db.execArg)
	assert.Contains(t, db.sql, `INSERT INTO "Company"`)
}
