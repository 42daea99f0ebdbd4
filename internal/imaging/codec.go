package imaging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

var supportedFormats = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif"}

// SupportedExtensions lists the file extensions FromFile and ToFile accept.
func SupportedExtensions() []string {
	out := make([]string, len(supportedFormats))
	copy(out, supportedFormats)
	return out
}

// IsSupported reports whether the path carries an extension we can encode.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// FromFile decodes the image at path at its native resolution and channel
// count. Non-8-bit samples are rescaled to 8 bits and single-channel images
// are expanded to 3 channels; the returned Metadata describes the file as
// stored.
func FromFile(path string) (*Buffer, Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Metadata{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, Metadata{}, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, path, err)
	}

	raw := gocv.IMRead(path, gocv.IMReadUnchanged)
	if raw.Empty() {
		raw.Close()
		return nil, Metadata{}, fmt.Errorf("%w: %s", ErrDecodeFailure, path)
	}
	defer raw.Close()

	meta := Metadata{
		Width:      raw.Cols(),
		Height:     raw.Rows(),
		Channels:   raw.Channels(),
		SampleType: sampleType(raw),
		Format:     formatFromPath(path),
	}

	normalized, err := normalize(raw)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, path, err)
	}

	buf, err := Wrap(normalized)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, path, err)
	}
	return buf, meta, nil
}

// ToFile encodes b at the format implied by the path extension.
func ToFile(path string, b *Buffer) error {
	if b == nil {
		return fmt.Errorf("%w: %v", ErrWriteFailure, ErrNoInput)
	}
	if !IsSupported(path) {
		return fmt.Errorf("%w: unsupported image format: %s", ErrWriteFailure, path)
	}
	if !gocv.IMWrite(path, b.mat) {
		return fmt.Errorf("%w: %s", ErrWriteFailure, path)
	}
	return nil
}

// normalize returns an 8-bit copy of raw with 3 or 4 channels.
func normalize(raw gocv.Mat) (gocv.Mat, error) {
	eight := gocv.NewMat()
	switch depth(raw) {
	case gocv.MatTypeCV8U:
		raw.CopyTo(&eight)
	case gocv.MatTypeCV16U:
		raw.ConvertToWithParams(&eight, gocv.MatTypeCV8U, 1.0/257.0, 0)
	case gocv.MatTypeCV32F, gocv.MatTypeCV64F:
		raw.ConvertToWithParams(&eight, gocv.MatTypeCV8U, 255, 0)
	default:
		eight.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported sample type %s", sampleType(raw))
	}

	switch eight.Channels() {
	case 3, 4:
		return eight, nil
	case 1:
		color := gocv.NewMat()
		gocv.CvtColor(eight, &color, gocv.ColorGrayToBGR)
		eight.Close()
		return color, nil
	default:
		channels := eight.Channels()
		eight.Close()
		return gocv.NewMat(), fmt.Errorf("unsupported channel count %d", channels)
	}
}

// formatFromPath extracts the lower-case image format from a file path.
func formatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
