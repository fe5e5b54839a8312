package dbrepository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"animal-donations/internal/donationportal/data"
	"animal-donations/pkg/logging"
)

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgInvalidTextRepresent = "22P02"
)

type DBStorage interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) (pgx.Row, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryValue(ctx context.Context, query string, args []any, dest []any) error
}

type DBRepository struct {
	storage DBStorage
	logger  *logging.ZapLogger
}

func New(storage DBStorage, logger *logging.ZapLogger) *DBRepository {
	return &DBRepository{
		storage: storage,
		logger:  logger,
	}
}

//go:embed sql/insert_animal.sql
var insertAnimalQuery string

func (db *DBRepository) InsertAnimal(ctx context.Context, animal *data.Animal) error {
	err := db.storage.QueryValue(
		ctx,
		insertAnimalQuery,
		[]any{
			animal.ID,
			animal.Name,
			animal.Description,
			animal.Image,
			animal.MedicalNeeds,
			string(animal.UrgencyLevel),
			animal.TargetAmount,
			animal.RaisedAmount,
			animal.BaselineAmount,
		},
		[]any{&animal.CreatedAt, &animal.UpdatedAt},
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/select_animal.sql
var selectAnimalQuery string

func (db *DBRepository) GetAnimal(ctx context.Context, id string) (data.Animal, error) {
	return db.getAnimal(ctx, selectAnimalQuery, id)
}

//go:embed sql/select_animal_for_update.sql
var selectAnimalForUpdateQuery string

// GetAnimalForUpdate locks the row until the surrounding transaction ends.
func (db *DBRepository) GetAnimalForUpdate(ctx context.Context, id string) (data.Animal, error) {
	return db.getAnimal(ctx, selectAnimalForUpdateQuery, id)
}

func (db *DBRepository) getAnimal(ctx context.Context, query string, id string) (data.Animal, error) {
	row, err := db.storage.QueryRow(ctx, query, id)
	if err != nil {
		return data.Animal{}, handleSQLError(err)
	}
	animal, err := scanAnimal(row)
	if err != nil {
		return data.Animal{}, handleSQLError(err)
	}
	return animal, nil
}

//go:embed sql/select_animals.sql
var selectAnimalsQuery string

func (db *DBRepository) GetAllAnimals(ctx context.Context) ([]data.Animal, error) {
	rows, err := db.storage.Query(ctx, selectAnimalsQuery)
	if err != nil {
		return nil, handleSQLError(err)
	}
	defer rows.Close()

	result := make([]data.Animal, 0)
	for rows.Next() {
		animal, err := scanAnimal(rows)
		if err != nil {
			return nil, handleSQLError(err)
		}
		result = append(result, animal)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}

//go:embed sql/update_animal_raised_amount_inc.sql
var increaseRaisedAmountQuery string

func (db *DBRepository) IncreaseRaisedAmount(ctx context.Context, animalID string, delta decimal.Decimal) error {
	tag, err := db.storage.Exec(ctx, increaseRaisedAmountQuery, animalID, delta)
	if err != nil {
		return handleSQLError(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrNotFound
	}
	return nil
}

//go:embed sql/update_animal_raised_amount.sql
var setRaisedAmountQuery string

func (db *DBRepository) SetRaisedAmount(ctx context.Context, animalID string, value decimal.Decimal) error {
	tag, err := db.storage.Exec(ctx, setRaisedAmountQuery, animalID, value)
	if err != nil {
		return handleSQLError(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrNotFound
	}
	return nil
}

//go:embed sql/select_completed_donations_sum.sql
var selectCompletedDonationsSumQuery string

func (db *DBRepository) GetCompletedDonationsSum(ctx context.Context, animalID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := db.storage.QueryValue(ctx, selectCompletedDonationsSumQuery, []any{animalID}, []any{&sum})
	if err != nil {
		return decimal.Zero, handleSQLError(err)
	}
	return sum, nil
}

//go:embed sql/delete_all.sql
var deleteAllQuery string

// DeleteAll removes every animal together with its donations.
func (db *DBRepository) DeleteAll(ctx context.Context) error {
	if _, err := db.storage.Exec(ctx, deleteAllQuery); err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/insert_donation.sql
var insertDonationQuery string

func (db *DBRepository) InsertDonation(ctx context.Context, donation *data.Donation) error {
	err := db.storage.QueryValue(
		ctx,
		insertDonationQuery,
		[]any{
			donation.ID,
			donation.AnimalID,
			donation.DonorName,
			donation.DonorEmail,
			donation.Amount,
			donation.RazorpayOrderID,
			string(donation.Status),
		},
		[]any{&donation.CreatedAt, &donation.UpdatedAt},
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/select_donation_by_order_for_update.sql
var selectDonationByOrderForUpdateQuery string

func (db *DBRepository) GetDonationByOrderIDForUpdate(ctx context.Context, orderID string) (data.Donation, error) {
	db.logger.DebugCtx(ctx, "getting donation", zap.String("orderID", orderID))
	row, err := db.storage.QueryRow(ctx, selectDonationByOrderForUpdateQuery, orderID)
	if err != nil {
		return data.Donation{}, handleSQLError(err)
	}
	donation, err := scanDonation(row)
	if err != nil {
		return data.Donation{}, handleSQLError(err)
	}
	return donation, nil
}

//go:embed sql/update_donation_status.sql
var updateDonationStatusQuery string

// SetDonationStatus updates status and, when non-nil, the gateway payment id
// and signature. It returns the row as stored.
func (db *DBRepository) SetDonationStatus(
	ctx context.Context,
	donationID string,
	status data.Status,
	paymentID *string,
	signature *string,
) (data.Donation, error) {
	row, err := db.storage.QueryRow(ctx, updateDonationStatusQuery, donationID, string(status), paymentID, signature)
	if err != nil {
		return data.Donation{}, handleSQLError(err)
	}
	donation, err := scanDonation(row)
	if err != nil {
		return data.Donation{}, handleSQLError(err)
	}
	return donation, nil
}

//go:embed sql/select_donations_by_animal.sql
var selectDonationsByAnimalQuery string

func (db *DBRepository) GetDonationsByAnimal(ctx context.Context, animalID string, status data.Status) ([]data.Donation, error) {
	rows, err := db.storage.Query(ctx, selectDonationsByAnimalQuery, animalID, string(status))
	if err != nil {
		return nil, handleSQLError(err)
	}
	return collectDonations(rows)
}

//go:embed sql/select_pending_donations.sql
var selectPendingDonationsQuery string

func (db *DBRepository) GetPendingDonations(ctx context.Context, createdBefore time.Time, limit int) ([]data.Donation, error) {
	rows, err := db.storage.Query(ctx, selectPendingDonationsQuery, createdBefore, limit)
	if err != nil {
		return nil, handleSQLError(err)
	}
	return collectDonations(rows)
}

func collectDonations(rows pgx.Rows) ([]data.Donation, error) {
	defer rows.Close()

	result := make([]data.Donation, 0)
	for rows.Next() {
		donation, err := scanDonation(rows)
		if err != nil {
			return nil, handleSQLError(err)
		}
		result = append(result, donation)
	}
	if err := rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}

func scanAnimal(row pgx.Row) (data.Animal, error) {
	var animal data.Animal
	var urgency string
	err := row.Scan(
		&animal.ID,
		&animal.Name,
		&animal.Description,
		&animal.Image,
		&animal.MedicalNeeds,
		&urgency,
		&animal.TargetAmount,
		&animal.RaisedAmount,
		&animal.BaselineAmount,
		&animal.CreatedAt,
		&animal.UpdatedAt,
	)
	if err != nil {
		return data.Animal{}, err //nolint:wrapcheck // mapped by handleSQLError
	}
	animal.UrgencyLevel = data.UrgencyLevel(urgency)
	return animal, nil
}

func scanDonation(row pgx.Row) (data.Donation, error) {
	var donation data.Donation
	var status string
	err := row.Scan(
		&donation.ID,
		&donation.AnimalID,
		&donation.DonorName,
		&donation.DonorEmail,
		&donation.Amount,
		&donation.RazorpayOrderID,
		&donation.RazorpayPaymentID,
		&donation.RazorpaySignature,
		&status,
		&donation.CreatedAt,
		&donation.UpdatedAt,
	)
	if err != nil {
		return data.Donation{}, err //nolint:wrapcheck // mapped by handleSQLError
	}
	donation.Status = data.Status(status)
	return donation, nil
}

func handleSQLError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return data.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", data.ErrUniqueConstraintViolation, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", data.ErrForeignKeyViolation, pgErr.ConstraintName)
		case pgInvalidTextRepresent:
			// a malformed uuid cannot match any row
			return data.ErrNotFound
		}
	}
	return err
}
