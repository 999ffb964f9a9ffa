package media

import (
	"encoding/hex"
	"net/http"

	"golang.org/x/crypto/sha3"
)

// Info describes one downloaded resource.
type Info struct {
	// Size is the body length in bytes.
	Size int64

	// Digest is the hex-encoded SHA3-256 digest of the body.
	Digest string

	// ContentType is the sniffed MIME type of the body.
	ContentType string

	// EXIF holds the EXIF tags found in the body, if any.
	EXIF []Tag
}

// HasEXIF reports whether the resource carried any EXIF metadata.
func (i Info) HasEXIF() bool {
	return len(i.EXIF) > 0
}

// Inspect computes the digest, content type, and EXIF tags of data.
// It never fails: a body that cannot be parsed as EXIF simply has no tags.
func Inspect(data []byte) Info {
	return Info{
		Size:        int64(len(data)),
		Digest:      Digest(data),
		ContentType: http.DetectContentType(data),
		EXIF:        EXIFTags(data),
	}
}

// Digest returns the hex-encoded SHA3-256 digest of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
