package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// WriteJPEG writes a minimal JPEG at path carrying an EXIF block with the
// given Model and DateTime tags (a tag is omitted when its value is empty),
// followed by payload. Files sharing tags but not payload differ in content.
func WriteJPEG(t testing.TB, path, model, dateTime string, payload []byte) {
	t.Helper()

	block := buildExif(t, model, dateTime)

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8})
	buf.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(2+6+len(block)))
	buf.WriteString("Exif\x00\x00")
	buf.Write(block)
	buf.Write(payload)
	buf.Write([]byte{0xFF, 0xD9})

	WriteBytes(t, path, buf.Bytes())
}

// WriteBytes writes content at path, creating parent directories.
func WriteBytes(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// buildExif encodes a TIFF header and an IFD0 holding the requested tags.
func buildExif(t testing.TB, model, dateTime string) []byte {
	t.Helper()

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		t.Fatalf("ifd mapping: %v", err)
	}
	ti := exif.NewTagIndex()
	ib := exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)

	// Model (0x0110) precedes DateTime (0x0132) in tag order.
	for _, tag := range [][2]string{{"Model", model}, {"DateTime", dateTime}} {
		if tag[1] == "" {
			continue
		}
		if err := ib.AddStandardWithName(tag[0], tag[1]); err != nil {
			t.Fatalf("add %s tag: %v", tag[0], err)
		}
	}

	block, err := exif.NewIfdByteEncoder().EncodeToExif(ib)
	if err != nil {
		t.Fatalf("encode exif: %v", err)
	}
	return block
}
