package media

import (
	exif "github.com/dsoprea/go-exif/v3"
)

// Tag is one flattened EXIF entry.
type Tag struct {
	// Name is the EXIF tag name (e.g. "Make", "GPSLatitude").
	Name string

	// Value is the formatted tag value.
	Value string
}

// EXIFTags returns the EXIF tags embedded in data.
// It returns nil for bodies without EXIF (PNG, GIF, HTML, ...) and for
// EXIF blocks that fail to parse.
func EXIFTags(data []byte) []Tag {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	tags := make([]Tag, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, Tag{Name: entry.TagName, Value: entry.Formatted})
	}
	return tags
}
