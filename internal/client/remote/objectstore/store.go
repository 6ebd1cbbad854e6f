// Package objectstore defines the remote object storage used for photos.
// Backends live in the s3store and gcsstore subpackages.
package objectstore

import (
	"context"
	"strings"
)

// Store uploads objects and resolves their public URLs.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	// PublicURL is a pure function of path; it performs no I/O.
	PublicURL(path string) string
}

// JoinURL joins base and path with exactly one slash.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ObjectPath places name under prefix; an empty prefix yields name.
func ObjectPath(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
