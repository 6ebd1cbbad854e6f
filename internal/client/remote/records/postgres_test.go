package records

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rackaudit/internal/client/models"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func sampleRecord(photo *string) *models.DamageRecord {
	return &models.DamageRecord{
		RecordID:        "3f1c2f7e-6c1b-4a39-9d7a-9f2b5a0c1d11",
		AuditID:         "audit-7",
		DamageType:      "Beam Damaged",
		RiskLevel:       models.RiskRed,
		LocationDetails: "Aisle 4, bay 2",
		PhotoRef:        photo,
		Notes:           "forklift strike",
		Recommendation:  "Replace Beam",
		Status:          models.StatusPending,
		CreatedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestInsertDamageRecord_WithPhoto(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	url := "https://cdn.example/damage-photos/1.jpg"
	rec := sampleRecord(&url)

	q := regexp.MustCompile(`INSERT INTO damage_records .* ON CONFLICT \(record_id\) DO NOTHING`)
	mock.ExpectExec(q.String()).
		WithArgs(rec.RecordID, "audit-7", "Beam Damaged", "RED", "Aisle 4, bay 2",
			sql.NullString{String: url, Valid: true}, "forklift strike", "Replace Beam",
			"synced", rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.InsertDamageRecord(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDamageRecord_NoPhotoAndReplay(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := sampleRecord(nil)

	// a replayed insert hits the conflict clause and affects zero rows
	mock.ExpectExec(`INSERT INTO damage_records`).
		WithArgs(rec.RecordID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sql.NullString{}, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.InsertDamageRecord(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDamageRecord_ExecError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO damage_records`).WillReturnError(boom)

	err := repo.InsertDamageRecord(context.Background(), sampleRecord(nil))
	require.ErrorIs(t, err, boom)
}

func TestListAuditors_OrderedByName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow("a1", "Alice").
		AddRow("b2", "Bob")
	mock.ExpectQuery(`SELECT id, name FROM auditors ORDER BY name`).WillReturnRows(rows)

	got, err := repo.ListAuditors(context.Background())
	require.NoError(t, err)
	require.Equal(t, []models.Auditor{{ID: "a1", Name: "Alice"}, {ID: "b2", Name: "Bob"}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAuditors_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name FROM auditors`).WillReturnError(errors.New("down"))

	_, err := repo.ListAuditors(context.Background())
	require.Error(t, err)
}

func TestListAuditors_RowError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow("a1", "Alice").
		RowError(0, errors.New("bad row"))
	mock.ExpectQuery(`SELECT id, name FROM auditors`).WillReturnRows(rows)

	_, err := repo.ListAuditors(context.Background())
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectPing()
	require.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("unreachable"))
	require.Error(t, repo.Ping(context.Background()))
}
