// Package common defines sentinel errors shared by the client layers of
// rackaudit. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound  = errors.New("not found")
	ErrKeyExists = errors.New("key already exists")

	// Input errors, reported synchronously to the caller and never queued.
	ErrMissingAuditID        = errors.New("audit id is required")
	ErrMissingDamageType     = errors.New("damage type is required")
	ErrMissingRecommendation = errors.New("recommendation is required for a custom damage type")
	ErrInvalidRiskLevel      = errors.New("risk level must be one of RED, AMBER, GREEN")
	ErrDanglingPhotoRef      = errors.New("photo reference does not match a pending photo")
	ErrInvalidPhotoRef       = errors.New("photo reference must be a pending photo key or an http(s) URL")
	ErrPhotoRefInUse         = errors.New("pending photo is already attached to a queued record")

	// Photo capture errors.
	ErrFileTooLarge      = errors.New("file size must be less than 5MB")
	ErrUnsupportedFormat = errors.New("only JPG and PNG files are allowed")
	ErrCorruptPhoto      = errors.New("pending photo is corrupt")

	// Sync errors.
	ErrSyncInProgress = errors.New("sync already in progress")
)
