// Package photo validates captured images and converts them to and from the
// text-safe form kept in the local store.
package photo

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rackaudit/internal/client/models"
	"github.com/dmitrijs2005/rackaudit/internal/common"
	"golang.org/x/crypto/blake2b"
)

// MaxSize is the largest accepted photo, in bytes.
const MaxSize = 5 << 20

var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// Validate checks size first, then the file name extension.
func Validate(size int, filename string) error {
	if size > MaxSize {
		return common.ErrFileTooLarge
	}
	if _, ok := allowedExtensions[models.FileExtension(filename)]; !ok {
		return common.ErrUnsupportedFormat
	}
	return nil
}

// Encode validates data and wraps it into a PendingPhoto whose payload is a
// base64 data URL.
func Encode(data []byte, mimeType, filename string) (*models.PendingPhoto, error) {
	if err := Validate(len(data), filename); err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = MimeTypeFor(filename)
	}

	return &models.PendingPhoto{
		EncodedData:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		MimeType:     mimeType,
		OriginalName: filename,
		Digest:       Digest(data),
	}, nil
}

// Decode returns the raw bytes of p. A stored digest, when present, must
// match the decoded payload.
func Decode(p *models.PendingPhoto) ([]byte, error) {
	data, err := DecodeData(p.EncodedData)
	if err != nil {
		return nil, err
	}
	if p.Digest != "" && p.Digest != Digest(data) {
		return nil, fmt.Errorf("%w: digest mismatch for %q", common.ErrCorruptPhoto, p.OriginalName)
	}
	return data, nil
}

// DecodeData accepts either a data URL or bare standard base64.
func DecodeData(encoded string) ([]byte, error) {
	payload := encoded
	if strings.HasPrefix(encoded, "data:") {
		i := strings.Index(encoded, ",")
		if i < 0 || !strings.HasSuffix(encoded[:i], ";base64") {
			return nil, fmt.Errorf("%w: malformed data url", common.ErrCorruptPhoto)
		}
		payload = encoded[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptPhoto, err)
	}
	return data, nil
}

// Digest returns the hex BLAKE2b-256 sum of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MimeTypeFor guesses a content type from the file extension.
func MimeTypeFor(filename string) string {
	switch models.FileExtension(filename) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
