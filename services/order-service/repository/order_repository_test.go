package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Khizarkk7/storefront-backend/services/order-service/models"
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

func TestFindByID_NotFound(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_StaleStatusRollsBack(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND order_status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), id, models.StatusPendingCOD,
		map[string]interface{}{"order_status": models.StatusConfirmed},
		&models.OrderStatusHistory{ID: uuid.New(), OrderID: id, FromStatus: models.StatusPendingCOD, ToStatus: models.StatusConfirmed},
	)
	assert.ErrorIs(t, err, ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_WritesHistoryInSameTransaction(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "order_status_history"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), id, models.StatusConfirmed,
		map[string]interface{}{"order_status": models.StatusProcessing},
		&models.OrderStatusHistory{ID: uuid.New(), OrderID: id, FromStatus: models.StatusConfirmed, ToStatus: models.StatusProcessing},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatus_UnknownOrder(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	mock.ExpectExec(`UPDATE "orders" SET "payment_status"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePaymentStatus(context.Background(), uuid.New(), models.PaymentPaid)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistory_OrderedOldestFirst(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db)

	orderID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "order_status_history" WHERE order_id = \$1 ORDER BY created_at ASC`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "from_status", "to_status", "created_at"}).
			AddRow(uuid.New(), orderID, "", models.StatusPendingCOD, now.Add(-time.Hour)).
			AddRow(uuid.New(), orderID, models.StatusPendingCOD, models.StatusConfirmed, now))

	entries, err := repo.History(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.StatusConfirmed, entries[1].ToStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
