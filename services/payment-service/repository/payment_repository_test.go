package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Khizarkk7/storefront-backend/services/payment-service/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

func TestResolve_OnlyFromPending(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPaymentRepo(db)

	mock.ExpectExec(`UPDATE "payments" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	changed, err := repo.Resolve(context.Background(), uuid.New(), models.StatusSucceeded, "")
	require.NoError(t, err)
	assert.True(t, changed)

	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	changed, err = repo.Resolve(context.Background(), uuid.New(), models.StatusExpired, "expired")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByProviderRef_NotFound(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPaymentRepo(db)

	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE provider = \$1 AND provider_ref = \$2`).
		WithArgs(models.ProviderStripe, "cs_missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByProviderRef(context.Background(), models.ProviderStripe, "cs_missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOpen_NewestPendingWithURL(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPaymentRepo(db)

	orderID, id := uuid.New(), uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE order_id = \$1 AND provider = \$2 AND status = \$3 AND payment_url <> '' ORDER BY created_at DESC`).
		WithArgs(orderID, models.ProviderStripe, models.StatusPending, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "provider", "status", "payment_url", "amount"}).
			AddRow(id, orderID, models.ProviderStripe, models.StatusPending, "https://checkout.stripe.test/x", "99.00"))

	p, err := repo.FindOpen(context.Background(), orderID, models.ProviderStripe)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "99", p.Amount.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
