package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Khizarkk7/storefront-backend/services/promotion-service/models"
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

func TestFindByCode_UpperCasesInput(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPromoRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "promo_codes" WHERE code = \$1`).
		WithArgs("WELCOME10", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "type", "value", "is_active"}).
			AddRow(id, "WELCOME10", "percentage", "10.00", true))

	promo, err := repo.FindByCode(context.Background(), "  welcome10 ")
	require.NoError(t, err)
	assert.Equal(t, id, promo.ID)
	assert.True(t, promo.Value.Equal(decimal.NewFromInt(10)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCode_NotFound(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPromoRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "promo_codes" WHERE code = \$1`).
		WithArgs("NOPE", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeem_CountsOnce(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPromoRepository(db)
	promo := &models.PromoCode{ID: uuid.New(), Code: "SAVE20", UsedCount: 4}
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "redemptions" WHERE order_id = \$1`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "promo_codes" SET "used_count"=used_count \+ 1 WHERE id = \$1 AND \(usage_limit = 0 OR used_count < usage_limit\)`).
		WithArgs(promo.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "redemptions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	already, err := repo.Redeem(context.Background(), promo, orderID, decimal.RequireFromString("12.50"))
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, 5, promo.UsedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_RepeatForSameOrder(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPromoRepository(db)
	promo := &models.PromoCode{ID: uuid.New(), UsedCount: 1}
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "redemptions"`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	already, err := repo.Redeem(context.Background(), promo, orderID, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, 1, promo.UsedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_Exhausted(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPromoRepository(db)
	promo := &models.PromoCode{ID: uuid.New(), UsageLimit: 1, UsedCount: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "redemptions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "promo_codes" SET "used_count"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), promo, uuid.New(), decimal.Zero)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate_NotFound(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormPromoRepository(db)

	mock.ExpectExec(`UPDATE "promo_codes" SET "is_active"=\$1,"updated_at"=\$2 WHERE code = \$3`).
		WithArgs(false, sqlmock.AnyArg(), "GHOST").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
