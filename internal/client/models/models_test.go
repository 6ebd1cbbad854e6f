package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/rackaudit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageTypes_CatalogShape(t *testing.T) {
	types := DamageTypes()
	require.Len(t, types, 16)
	assert.Equal(t, DamageTypeOther, types[len(types)-1])

	for _, dt := range types[:len(types)-1] {
		rec, ok := Recommendation(dt)
		assert.True(t, ok, dt)
		assert.NotEmpty(t, rec, dt)
	}

	_, ok := Recommendation(DamageTypeOther)
	assert.False(t, ok)

	types[0] = "mutated"
	assert.Equal(t, "Beam Safety Clips Missing", DamageTypes()[0])
}

func TestParseRiskLevel(t *testing.T) {
	for in, want := range map[string]RiskLevel{"red": RiskRed, " Amber ": RiskAmber, "GREEN": RiskGreen} {
		got, err := ParseRiskLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseRiskLevel("blue")
	require.ErrorIs(t, err, common.ErrInvalidRiskLevel)
}

func TestNewDamageRecord_DerivesRecommendation(t *testing.T) {
	rec, err := NewDamageRecord(DamageInput{
		AuditID:         "a-1",
		DamageType:      "Beam Damaged",
		RiskLevel:       "amber",
		LocationDetails: "A-01-2-L",
	})
	require.NoError(t, err)
	assert.Equal(t, "Replace Beam", rec.Recommendation)
	assert.Equal(t, RiskAmber, rec.RiskLevel)
	assert.Equal(t, StatusPending, rec.Status)
	assert.NotEmpty(t, rec.RecordID)
	assert.Nil(t, rec.PhotoRef)
}

func TestNewDamageRecord_CatalogIgnoresCustomRecommendation(t *testing.T) {
	rec, err := NewDamageRecord(DamageInput{
		AuditID:              "a-1",
		DamageType:           "Upright Damaged",
		RiskLevel:            "RED",
		CustomRecommendation: "paint it",
	})
	require.NoError(t, err)
	assert.Equal(t, "Replace Upright", rec.Recommendation)
}

func TestNewDamageRecord_Other(t *testing.T) {
	rec, err := NewDamageRecord(DamageInput{
		AuditID:              "a-1",
		DamageType:           DamageTypeOther,
		CustomType:           "Forklift scrape",
		CustomRecommendation: "Monitor",
		RiskLevel:            "green",
		PhotoRef:             "photo-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Forklift scrape", rec.DamageType)
	assert.Equal(t, "Monitor", rec.Recommendation)
	require.NotNil(t, rec.PhotoRef)
	assert.Equal(t, "photo-1", *rec.PhotoRef)
	assert.True(t, rec.HasLocalPhoto())

	_, err = NewDamageRecord(DamageInput{
		AuditID:    "a-1",
		DamageType: DamageTypeOther,
		CustomType: "Forklift scrape",
		RiskLevel:  "green",
	})
	require.ErrorIs(t, err, common.ErrMissingRecommendation)
}

func TestNewDamageRecord_InputErrors(t *testing.T) {
	_, err := NewDamageRecord(DamageInput{DamageType: "Beam Damaged", RiskLevel: "RED"})
	require.ErrorIs(t, err, common.ErrMissingAuditID)

	_, err = NewDamageRecord(DamageInput{AuditID: "a", DamageType: "Beam Damaged", RiskLevel: "pink"})
	require.ErrorIs(t, err, common.ErrInvalidRiskLevel)

	_, err = NewDamageRecord(DamageInput{AuditID: "a", RiskLevel: "RED"})
	require.ErrorIs(t, err, common.ErrMissingDamageType)
}

func TestFinalize_ForcesPendingAndFillsIDs(t *testing.T) {
	r := &DamageRecord{AuditID: "a", DamageType: "Beam Dislodged", RiskLevel: RiskRed, Status: StatusSynced}
	require.NoError(t, r.Finalize())
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "Re-Engage Dislodged Beam", r.Recommendation)
	assert.NotEmpty(t, r.RecordID)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestFinalize_PhotoRef(t *testing.T) {
	for _, ref := range []string{"photo-1700000000000", "https://cdn.example/a.png", "http://minio:9000/b/c.jpg"} {
		r := &DamageRecord{AuditID: "a", DamageType: "Beam Dislodged", RiskLevel: RiskRed, PhotoRef: &ref}
		assert.NoError(t, r.Finalize(), ref)
	}
	for _, ref := range []string{"", "photo-", "IMG_001.jpg", "ftp://host/a.jpg", "https://", "audit-1"} {
		r := &DamageRecord{AuditID: "a", DamageType: "Beam Dislodged", RiskLevel: RiskRed, PhotoRef: &ref}
		assert.ErrorIs(t, r.Finalize(), common.ErrInvalidPhotoRef, ref)
	}

	_, err := NewDamageRecord(DamageInput{AuditID: "a", DamageType: "Beam Dislodged", RiskLevel: "red", PhotoRef: "C:\\photos\\a.jpg"})
	require.ErrorIs(t, err, common.ErrInvalidPhotoRef)
}

func TestHasLocalPhoto(t *testing.T) {
	url := "https://cdn.example/audit-photos/damage-photos/1.png"
	local := "photo-123"
	assert.False(t, (&DamageRecord{}).HasLocalPhoto())
	assert.False(t, (&DamageRecord{PhotoRef: &url}).HasLocalPhoto())
	assert.True(t, (&DamageRecord{PhotoRef: &local}).HasLocalPhoto())
}

func TestDamageRecord_JSONUsesWireNames(t *testing.T) {
	ref := "photo-1"
	b, err := json.Marshal(DamageRecord{AuditID: "a", PhotoRef: &ref, Status: StatusPending})
	require.NoError(t, err)
	s := string(b)
	for _, k := range []string{`"audit_id":"a"`, `"photo_url":"photo-1"`, `"status":"pending"`} {
		assert.True(t, strings.Contains(s, k), "missing %s in %s", k, s)
	}
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "jpg", FileExtension("IMG_001.JPG"))
	assert.Equal(t, "png", PendingPhoto{OriginalName: "rack.png"}.Extension())
	assert.Equal(t, "", FileExtension("noext"))
}

func TestKeyGenerator_StrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := &KeyGenerator{now: func() time.Time { return fixed }}

	assert.Equal(t, "audit-1700000000000", g.RecordKey())
	assert.Equal(t, "photo-1700000000001", g.PhotoKey())
	assert.Equal(t, "1700000000002.png", g.ObjectName("png"))
	assert.Equal(t, "1700000000003", g.ObjectName(""))

	seen := map[string]bool{}
	gen := NewKeyGenerator()
	for i := 0; i < 100; i++ {
		k := gen.RecordKey()
		require.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}
