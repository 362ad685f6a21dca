package workview

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriwork/veriwork/internal/workentry"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &PostgresRepository{db: mock}
}

func TestManagerQueueOldestFirst(t *testing.T) {
	mock, repo := newMockRepo(t)

	managerID := uuid.New()
	teamID := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "title", "work_type", "start_date", "end_date",
		"employee_id", "employee_name", "team_id", "team_name", "created_at"}).
		AddRow(uuid.New(), "oldest", "development", now.AddDate(0, 0, -3), nil, uuid.New(), "eve", teamID, "platform", now.Add(-2*time.Hour)).
		AddRow(uuid.New(), "newest", "development", now.AddDate(0, 0, -1), nil, uuid.New(), "omar", teamID, "platform", now)

	mock.ExpectQuery(regexp.QuoteMeta(managerQueueQuery)).
		WithArgs(managerID).
		WillReturnRows(rows)

	items, err := repo.ManagerQueue(context.Background(), managerID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "oldest", items[0].Title)
	assert.Equal(t, "eve", items[0].EmployeeName)
	assert.Equal(t, "platform", items[0].TeamName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerQueueEmpty(t *testing.T) {
	mock, repo := newMockRepo(t)

	managerID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(managerQueueQuery)).
		WithArgs(managerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "work_type", "start_date", "end_date",
			"employee_id", "employee_name", "team_id", "team_name", "created_at"}))

	items, err := repo.ManagerQueue(context.Background(), managerID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyViewIncludesTeamlessEntries(t *testing.T) {
	mock, repo := newMockRepo(t)

	companyID := uuid.New()
	teamID := uuid.New()
	teamName := "platform"
	managerName := "mara"
	rating := int16(4)
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "title", "approval_status", "is_immutable", "company_rating",
		"employee_id", "employee_name", "team_id", "team_name", "manager_name", "created_at"}).
		AddRow(uuid.New(), "approved work", workentry.StatusApproved, true, &rating, uuid.New(), "eve", &teamID, &teamName, &managerName, now).
		AddRow(uuid.New(), "solo work", workentry.StatusPendingReview, false, (*int16)(nil), uuid.New(), "omar", nil, nil, nil, now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(companyViewQuery)).
		WithArgs(companyID).
		WillReturnRows(rows)

	items, err := repo.CompanyView(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, workentry.StatusApproved, items[0].ApprovalStatus)
	assert.True(t, items[0].IsImmutable)
	require.NotNil(t, items[0].CompanyRating)
	assert.Equal(t, int16(4), *items[0].CompanyRating)

	assert.Nil(t, items[1].TeamID)
	assert.Nil(t, items[1].TeamName)
	assert.Nil(t, items[1].ManagerName)
	require.NoError(t, mock.ExpectationsWereMet())
}
