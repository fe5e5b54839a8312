package dbrepository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animal-donations/internal/donationportal/data"
	"animal-donations/pkg/logging"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	rows    [][]any
	current int
	closed  bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.current-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.current >= len(r.rows) {
		return false
	}
	r.current++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.current-1], dest)
}

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d destinations", len(values), len(dest))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case **string:
			if v != nil {
				s := v.(string)
				*d = &s
			}
		case *decimal.Decimal:
			*d = v.(decimal.Decimal)
		case **decimal.Decimal:
			if v != nil {
				dec := v.(decimal.Decimal)
				*d = &dec
			}
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}

// stubStorage records every statement and answers with canned results.
type stubStorage struct {
	queries []string
	args    [][]any
	row     fakeRow
	rows    *fakeRows
	tag     pgconn.CommandTag
	err     error
}

func (s *stubStorage) record(query string, args []any) {
	s.queries = append(s.queries, query)
	s.args = append(s.args, args)
}

func (s *stubStorage) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.record(query, args)
	return s.tag, s.err
}

func (s *stubStorage) QueryRow(_ context.Context, query string, args ...any) (pgx.Row, error) {
	s.record(query, args)
	return s.row, nil
}

func (s *stubStorage) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	s.record(query, args)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubStorage) QueryValue(_ context.Context, query string, args []any, dest []any) error {
	s.record(query, args)
	if s.err != nil {
		return s.err
	}
	return s.row.Scan(dest...)
}

var testTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func animalRow(id, name string, createdAt time.Time) []any {
	return []any{
		id, name, "desc", "https://example.com/a.jpg", nil, "high",
		decimal.NewFromInt(1000), decimal.NewFromInt(10), decimal.Zero,
		createdAt, createdAt,
	}
}

func donationRow(id, status string) []any {
	return []any{
		id, "a-1", "Alice", "a@x.com", decimal.NewFromInt(500), "order_" + id,
		"pay_" + id, nil, status, testTime, testTime,
	}
}

func normalize(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func TestHandleSQLError(t *testing.T) {
	otherErr := errors.New("connection reset")
	serializationErr := &pgconn.PgError{Code: "40001"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: data.ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: data.ErrNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "donations_razorpay_order_id_key"}, want: data.ErrUniqueConstraintViolation},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503", ConstraintName: "donations_animal_id_fkey"}, want: data.ErrForeignKeyViolation},
		{name: "malformed uuid", err: &pgconn.PgError{Code: "22P02"}, want: data.ErrNotFound},
		{name: "other pg error", err: serializationErr, want: serializationErr},
		{name: "other error", err: otherErr, want: otherErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, handleSQLError(tt.err), tt.want)
		})
	}
}

func TestHandleSQLErrorKeepsConstraintName(t *testing.T) {
	err := handleSQLError(&pgconn.PgError{Code: "23503", ConstraintName: "donations_animal_id_fkey"})
	assert.Contains(t, err.Error(), "donations_animal_id_fkey")
	assert.NotErrorIs(t, err, data.ErrNotFound)
}

func TestListQueriesOrdering(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		orderBy string
	}{
		{name: "animals newest first", query: selectAnimalsQuery, orderBy: "ORDER BY created_at DESC, id DESC"},
		{name: "donations newest first", query: selectDonationsByAnimalQuery, orderBy: "ORDER BY created_at DESC, id DESC"},
		{name: "pending oldest first", query: selectPendingDonationsQuery, orderBy: "ORDER BY created_at LIMIT $2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, normalize(tt.query), tt.orderBy)
		})
	}
}

func TestLockingQueries(t *testing.T) {
	assert.True(t, strings.HasSuffix(normalize(selectAnimalForUpdateQuery), "FOR UPDATE;"))
	assert.True(t, strings.HasSuffix(normalize(selectDonationByOrderForUpdateQuery), "FOR UPDATE;"))
	assert.NotContains(t, selectAnimalQuery, "FOR UPDATE")
}

func TestInsertAnimalUsesStatementClock(t *testing.T) {
	// now() is fixed for the whole transaction.
	assert.Contains(t, insertAnimalQuery, "clock_timestamp()")
	assert.NotContains(t, insertAnimalQuery, "now()")
}

func TestGetAllAnimalsKeepsStoreOrder(t *testing.T) {
	rows := &fakeRows{rows: [][]any{
		animalRow("a-3", "third", testTime.Add(2*time.Second)),
		animalRow("a-2", "second", testTime.Add(time.Second)),
		animalRow("a-1", "first", testTime),
	}}
	storage := &stubStorage{rows: rows}

	animals, err := New(storage, logging.NewNop()).GetAllAnimals(context.Background())
	require.NoError(t, err)

	require.Len(t, storage.queries, 1)
	assert.Equal(t, selectAnimalsQuery, storage.queries[0])
	require.Len(t, animals, 3)
	assert.Equal(t, "third", animals[0].Name)
	assert.Equal(t, "first", animals[2].Name)
	assert.Equal(t, data.UrgencyHigh, animals[0].UrgencyLevel)
	assert.Nil(t, animals[0].MedicalNeeds)
	require.NotNil(t, animals[0].TargetAmount)
	assert.True(t, animals[0].TargetAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, rows.closed)
}

func TestGetAnimalMalformedID(t *testing.T) {
	storage := &stubStorage{row: fakeRow{err: &pgconn.PgError{Code: "22P02"}}}

	_, err := New(storage, logging.NewNop()).GetAnimal(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, data.ErrNotFound)
	assert.Equal(t, []any{"not-a-uuid"}, storage.args[0])
}

func TestGetDonationByOrderIDNoRows(t *testing.T) {
	storage := &stubStorage{row: fakeRow{err: pgx.ErrNoRows}}

	_, err := New(storage, logging.NewNop()).GetDonationByOrderIDForUpdate(context.Background(), "order_missing")
	require.ErrorIs(t, err, data.ErrNotFound)
	assert.Equal(t, selectDonationByOrderForUpdateQuery, storage.queries[0])
}

func TestInsertDonationUnknownAnimal(t *testing.T) {
	storage := &stubStorage{err: &pgconn.PgError{Code: "23503", ConstraintName: "donations_animal_id_fkey"}}

	err := New(storage, logging.NewNop()).InsertDonation(context.Background(), &data.Donation{
		ID:              "d-1",
		AnimalID:        "a-missing",
		Amount:          decimal.NewFromInt(500),
		RazorpayOrderID: "order_1",
		Status:          data.PendingStatus,
	})
	require.ErrorIs(t, err, data.ErrForeignKeyViolation)
}

func TestIncreaseRaisedAmountUnknownAnimal(t *testing.T) {
	storage := &stubStorage{tag: pgconn.NewCommandTag("UPDATE 0")}

	err := New(storage, logging.NewNop()).IncreaseRaisedAmount(context.Background(), "a-missing", decimal.NewFromInt(5))
	require.ErrorIs(t, err, data.ErrNotFound)
	assert.Equal(t, increaseRaisedAmountQuery, storage.queries[0])
}

func TestGetDonationsByAnimalPassesStatus(t *testing.T) {
	storage := &stubStorage{rows: &fakeRows{rows: [][]any{
		donationRow("d-2", "completed"),
		donationRow("d-1", "completed"),
	}}}

	donations, err := New(storage, logging.NewNop()).GetDonationsByAnimal(context.Background(), "a-1", data.CompletedStatus)
	require.NoError(t, err)

	assert.Equal(t, []any{"a-1", "completed"}, storage.args[0])
	require.Len(t, donations, 2)
	assert.Equal(t, "d-2", donations[0].ID)
	assert.Equal(t, data.CompletedStatus, donations[0].Status)
	require.NotNil(t, donations[0].RazorpayPaymentID)
	assert.Equal(t, "pay_d-2", *donations[0].RazorpayPaymentID)
	assert.Nil(t, donations[0].RazorpaySignature)
}
