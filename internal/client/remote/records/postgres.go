package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/rackaudit/internal/client/models"
	"github.com/dmitrijs2005/rackaudit/internal/client/remote/records/migrations"
	"github.com/dmitrijs2005/rackaudit/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepository struct {
	db   dbx.DBTX
	ping func(ctx context.Context) error
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, ping: db.PingContext}
}

// Open connects through the pgx stdlib driver. The connection is lazy;
// use Ping to probe reachability.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}

// RunMigrations applies the embedded remote schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertDamageRecord(ctx context.Context, rec *models.DamageRecord) error {
	query := `INSERT INTO damage_records
		(record_id, audit_id, damage_type, risk_level, location_details, photo_url, notes, recommendation, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (record_id) DO NOTHING`

	var photoURL sql.NullString
	if rec.PhotoRef != nil {
		photoURL = sql.NullString{String: *rec.PhotoRef, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		rec.RecordID,
		rec.AuditID,
		rec.DamageType,
		string(rec.RiskLevel),
		rec.LocationDetails,
		photoURL,
		rec.Notes,
		rec.Recommendation,
		string(models.StatusSynced),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListAuditors(ctx context.Context) ([]models.Auditor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM auditors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var auditors []models.Auditor
	for rows.Next() {
		var a models.Auditor
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("error scanning auditor: %w", err)
		}
		auditors = append(auditors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auditors: %w", err)
	}
	return auditors, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.ping(ctx)
}
