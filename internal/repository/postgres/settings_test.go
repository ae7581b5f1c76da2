package postgres

import (
	"context"
	"database/sql"
	"testing"

	"wordreminder/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestSettingsRepo_SetReminderTimes(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewSettingsRepo(db)

	mock.ExpectExec("INSERT INTO user_settings .* ON CONFLICT \\(user_id\\) DO UPDATE").
		WithArgs(int64(123), "09:00", "21:30").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.SetReminderTimes(context.Background(), domain.ReminderSettings{
		UserID:  123,
		Morning: domain.Clock{Hour: 9},
		Evening: domain.Clock{Hour: 21, Minute: 30},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepo_GetReminderTimes(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expected      *domain.ReminderSettings
		expectedError bool
	}{
		{
			name:     "settings found",
			mockRows: sqlmock.NewRows([]string{"morning_time", "evening_time"}).AddRow("08:15", "22:00"),
			expected: &domain.ReminderSettings{
				UserID:  123,
				Morning: domain.Clock{Hour: 8, Minute: 15},
				Evening: domain.Clock{Hour: 22},
			},
		},
		{
			name:      "settings not set",
			mockError: sql.ErrNoRows,
			expected:  nil,
		},
		{
			name:          "corrupt stored value",
			mockRows:      sqlmock.NewRows([]string{"morning_time", "evening_time"}).AddRow("morning", "22:00"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewSettingsRepo(db)

			query := "SELECT morning_time, evening_time FROM user_settings WHERE user_id = \\$1"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs(int64(123)).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs(int64(123)).WillReturnRows(tt.mockRows)
			}

			settings, err := repo.GetReminderTimes(context.Background(), 123)

			if tt.expectedError {
				assert.ErrorIs(t, err, domain.ErrMalformedTime)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, settings)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
