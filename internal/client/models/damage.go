package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/rackaudit/internal/common"
	"github.com/google/uuid"
)

// RiskLevel classifies the urgency of a finding.
type RiskLevel string

const (
	RiskRed   RiskLevel = "RED"
	RiskAmber RiskLevel = "AMBER"
	RiskGreen RiskLevel = "GREEN"
)

// ParseRiskLevel accepts any letter case and surrounding whitespace.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch r := RiskLevel(strings.ToUpper(strings.TrimSpace(s))); r {
	case RiskRed, RiskAmber, RiskGreen:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidRiskLevel, s)
	}
}

// Status is the queue state of a record. Synced records are deleted from the
// local store rather than rewritten, so StatusSynced never appears locally.
type Status string

const (
	StatusPending Status = "pending"
	StatusSynced  Status = "synced"
)

// DamageRecord is a single finding attached to an audit.
type DamageRecord struct {
	// RecordID is a client-generated identifier; the remote store treats it
	// as unique so replayed inserts are absorbed.
	RecordID        string    `json:"record_id"`
	AuditID         string    `json:"audit_id"`
	DamageType      string    `json:"damage_type"`
	RiskLevel       RiskLevel `json:"risk_level"`
	LocationDetails string    `json:"location_details"`
	// PhotoRef is nil, a local photo key (photo-...) or a remote URL.
	PhotoRef       *string   `json:"photo_url"`
	Notes          string    `json:"notes"`
	Recommendation string    `json:"recommendation"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// DamageInput is what a form produces before finalization.
type DamageInput struct {
	AuditID         string
	DamageType      string
	CustomType      string
	RiskLevel       string
	LocationDetails string
	PhotoRef        string
	Notes           string
	// CustomRecommendation is only honoured when DamageType is "Other".
	CustomRecommendation string
}

// NewDamageRecord validates in and builds a pending record. The
// recommendation comes from the catalog unless the "Other" sentinel is
// chosen, in which case both the custom type and recommendation are required.
func NewDamageRecord(in DamageInput) (*DamageRecord, error) {
	if strings.TrimSpace(in.AuditID) == "" {
		return nil, common.ErrMissingAuditID
	}

	risk, err := ParseRiskLevel(in.RiskLevel)
	if err != nil {
		return nil, err
	}

	rec := &DamageRecord{
		RecordID:        uuid.NewString(),
		AuditID:         strings.TrimSpace(in.AuditID),
		RiskLevel:       risk,
		LocationDetails: strings.TrimSpace(in.LocationDetails),
		Notes:           in.Notes,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}

	switch {
	case in.DamageType == DamageTypeOther:
		rec.DamageType = DamageTypeOther
		if custom := strings.TrimSpace(in.CustomType); custom != "" {
			rec.DamageType = custom
		}
		rec.Recommendation = strings.TrimSpace(in.CustomRecommendation)
	default:
		rec.DamageType = in.DamageType
	}

	if ref := strings.TrimSpace(in.PhotoRef); ref != "" {
		rec.PhotoRef = &ref
	}

	if err := rec.Finalize(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Finalize enforces the record invariants in place. Catalog types always
// receive the catalog recommendation; anything else ("Other" or free text)
// must already carry one.
func (r *DamageRecord) Finalize() error {
	if strings.TrimSpace(r.AuditID) == "" {
		return common.ErrMissingAuditID
	}
	if _, err := ParseRiskLevel(string(r.RiskLevel)); err != nil {
		return err
	}
	if strings.TrimSpace(r.DamageType) == "" {
		return common.ErrMissingDamageType
	}

	if rec, ok := Recommendation(r.DamageType); ok {
		r.Recommendation = rec
	} else if strings.TrimSpace(r.Recommendation) == "" {
		return common.ErrMissingRecommendation
	}

	if r.PhotoRef != nil && !validPhotoRef(*r.PhotoRef) {
		return fmt.Errorf("%w: %q", common.ErrInvalidPhotoRef, *r.PhotoRef)
	}

	if r.RecordID == "" {
		r.RecordID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.Status = StatusPending
	return nil
}

// HasLocalPhoto reports whether PhotoRef still points at a pending photo
// in the local store rather than at an uploaded object.
func (r *DamageRecord) HasLocalPhoto() bool {
	return r.PhotoRef != nil && strings.HasPrefix(*r.PhotoRef, common.PhotoKeyPrefix)
}

func validPhotoRef(ref string) bool {
	if strings.HasPrefix(ref, common.PhotoKeyPrefix) {
		return len(ref) > len(common.PhotoKeyPrefix)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
