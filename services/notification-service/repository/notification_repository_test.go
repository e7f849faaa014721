package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Khizarkk7/storefront-backend/services/common/pagination"
	"github.com/Khizarkk7/storefront-backend/services/notification-service/models"
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

func TestSaveLog(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`INSERT INTO "notification_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	entry := &models.NotificationLog{EventType: "order_created", Recipient: "a@b.co", Channel: models.ChannelEmail, Status: models.StatusSent, Attempt: 1}
	require.NoError(t, NewNotificationRepository(db).SaveLog(context.Background(), entry))
	assert.Equal(t, int64(7), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLogs_Filters(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notification_logs" WHERE status = \$1 AND channel = \$2`).
		WithArgs(models.StatusFailed, models.ChannelSMS).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "notification_logs" WHERE status = \$1 AND channel = \$2 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "recipient", "channel", "status", "attempt", "created_at"}).
			AddRow(3, "payment_failed", "+923001234567", "sms", "failed", 3, time.Now()))

	logs, total, err := NewNotificationRepository(db).GetLogs(context.Background(),
		models.NotificationFilter{Status: models.StatusFailed, Channel: models.ChannelSMS},
		pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, 3, logs[0].Attempt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
