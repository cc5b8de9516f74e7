package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

var (
	// ErrRead is returned when an uploaded image could not be read.
	ErrRead = errors.New("failed to read image")
	// ErrUnsupportedFormat is returned for anything other than PNG or JPEG.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrInvalidDataURI is returned by ParseDataURI for malformed input.
	ErrInvalidDataURI = errors.New("invalid data URI")
)

// Asset is an in-memory image: raw bytes plus the MIME type they were declared
// or detected as.
type Asset struct {
	MIMEType string
	Data     []byte
}

// Empty reports whether the asset carries no image bytes.
func (a Asset) Empty() bool {
	return len(a.Data) == 0
}

// DataURI renders the asset as data:<mime>;base64,<payload>.
func (a Asset) DataURI() string {
	return "data:" + a.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Extension returns the file extension used when writing the asset to disk.
func (a Asset) Extension() string {
	switch a.MIMEType {
	case MIMEPNG:
		return ".png"
	case MIMEJPEG:
		return ".jpg"
	}
	if m := mimetype.Lookup(a.MIMEType); m != nil {
		return m.Extension()
	}
	return ".bin"
}

// Load reads an image from r. The declared MIME type (as sent by a browser
// file picker) is trusted when present; otherwise it is sniffed from the
// content. No size or type validation happens here.
func Load(r io.Reader, declaredMIME string) (Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if len(data) == 0 {
		return Asset{}, fmt.Errorf("%w: empty file", ErrRead)
	}

	mime := normalizeMIME(declaredMIME)
	if mime == "" {
		mime = normalizeMIME(mimetype.Detect(data).String())
	}

	return Asset{MIMEType: mime, Data: data}, nil
}

// LoadFile reads an image from disk and sniffs its MIME type.
func LoadFile(path string) (Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	return Load(f, "")
}

// ParseDataURI is the inverse of Asset.DataURI.
func ParseDataURI(uri string) (Asset, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Asset{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Asset{}, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Asset{}, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %w", ErrInvalidDataURI, err)
	}

	return Asset{MIMEType: normalizeMIME(mime), Data: data}, nil
}

// CheckSupported returns ErrUnsupportedFormat unless mime is PNG or JPEG.
func CheckSupported(mime string) error {
	switch normalizeMIME(mime) {
	case MIMEPNG, MIMEJPEG:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, mime)
}

// normalizeMIME drops parameters and lowercases the type so that
// "image/PNG; charset=binary" compares equal to "image/png".
func normalizeMIME(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "image/jpg" {
		return MIMEJPEG
	}
	return mime
}
