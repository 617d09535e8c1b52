package meta

import (
	"os"
	"strings"
	"time"

	"github.com/fedragon/go-mediasort/internal/models"

	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"
)

// DateTimeLayout is the layout of the EXIF DateTime tag.
const DateTimeLayout = "2006:01:02 15:04:05"

type Extractor interface {
	Extract(path string) models.Metadata
}

// ExifExtractor reads the capture time from the DateTime tag and the device
// from the Model tag. Files without EXIF, or with unreadable or malformed
// tags, yield empty values rather than errors.
type ExifExtractor struct {
	Logger *zap.Logger
}

func NewExifExtractor(logger *zap.Logger) *ExifExtractor {
	return &ExifExtractor{Logger: logger}
}

func (e *ExifExtractor) Extract(path string) models.Metadata {
	var md models.Metadata

	f, err := os.Open(path)
	if err != nil {
		e.Logger.Debug("Cannot open file for metadata", zap.String("path", path), zap.Error(err))
		return md
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		e.Logger.Debug("Cannot decode EXIF", zap.String("path", path), zap.Error(err))
		return md
	}

	if value, ok := stringTag(x, exif.DateTime); ok {
		if t, err := ParseDateTime(value); err == nil {
			md.CapturedAt = t
		} else {
			e.Logger.Debug("Malformed capture date", zap.String("path", path), zap.String("value", value))
		}
	}

	if value, ok := stringTag(x, exif.Model); ok {
		md.Device = value
	}

	return md
}

// ParseDateTime parses an EXIF date such as "2021:07:04 10:00:00".
func ParseDateTime(value string) (time.Time, error) {
	return time.Parse(DateTimeLayout, value)
}

func stringTag(x *exif.Exif, name exif.FieldName) (string, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return "", false
	}

	value, err := tag.StringVal()
	if err != nil {
		return "", false
	}

	value = strings.TrimSpace(strings.TrimRight(value, "\x00"))
	return value, value != ""
}
