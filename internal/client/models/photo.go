package models

import (
	"path/filepath"
	"strings"
)

// PendingPhoto is a captured image waiting for upload.
type PendingPhoto struct {
	// EncodedData is a data URL (data:<mime>;base64,<payload>).
	EncodedData  string `json:"base64"`
	MimeType     string `json:"contentType"`
	OriginalName string `json:"name"`
	// Digest is the hex BLAKE2b-256 of the raw bytes.
	Digest string `json:"digest,omitempty"`
}

// Extension returns the lower-cased extension of OriginalName without the
// dot, or "" when the name has none.
func (p PendingPhoto) Extension() string {
	return FileExtension(p.OriginalName)
}

// FileExtension returns the lower-cased extension of name without the dot.
func FileExtension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// QueuedRecord pairs a pending record with its local store key.
type QueuedRecord struct {
	Key    string
	Record *DamageRecord
}

// Auditor is a read-only row from the remote auditors table.
type Auditor struct {
	ID   string
	Name string
}
