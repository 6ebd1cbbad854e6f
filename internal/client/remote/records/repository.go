// Package records persists synced damage records to the remote Postgres
// store and reads the auditor directory from it.
package records

import (
	"context"

	"github.com/dmitrijs2005/rackaudit/internal/client/models"
)

// Repository is the remote relational store as seen by the client.
type Repository interface {
	// InsertDamageRecord stores rec as a synced row. Replaying the same
	// RecordID is absorbed without error.
	InsertDamageRecord(ctx context.Context, rec *models.DamageRecord) error
	ListAuditors(ctx context.Context) ([]models.Auditor, error)
	Ping(ctx context.Context) error
}
