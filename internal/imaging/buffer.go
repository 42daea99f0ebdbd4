// Immutable pixel buffers shared between graph nodes
package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Channel indices in the interleaved BGR(A) layout used end to end.
const (
	ChannelB = 0
	ChannelG = 1
	ChannelR = 2
	ChannelA = 3
)

// maxDimension guards against decoding absurdly large images.
const maxDimension = 16384

// Buffer is an owned 8-bit, row-major, interleaved pixel grid.
//
// A Buffer is never modified after construction. Consumers that need
// their own copy call Clone; the producer releases it with Close.
type Buffer struct {
	mat    gocv.Mat
	closed bool
}

// Metadata describes an image as it was stored on disk.
type Metadata struct {
	Width      int
	Height     int
	Channels   int
	SampleType string
	Format     string
}

// Wrap takes ownership of mat and returns it as a Buffer.
// The Mat must be non-empty, 8-bit and have 1, 3 or 4 channels.
func Wrap(mat gocv.Mat) (*Buffer, error) {
	if err := Validate(mat); err != nil {
		mat.Close()
		return nil, err
	}
	return &Buffer{mat: mat}, nil
}

// FromBytes copies pix into a new Buffer of the given geometry.
func FromBytes(width, height, channels int, pix []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidParameter, width, height)
	}
	mt, ok := matType(channels)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidParameter, channels)
	}
	if len(pix) != width*height*channels {
		return nil, fmt.Errorf("%w: expected %d samples, got %d",
			ErrInvalidParameter, width*height*channels, len(pix))
	}

	// NewMatFromBytes aliases the Go slice, so keep a native copy only.
	view, err := gocv.NewMatFromBytes(height, width, mt, pix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	defer view.Close()

	return Wrap(view.Clone())
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.mat.Cols() }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.mat.Rows() }

// Channels returns the number of interleaved samples per pixel.
func (b *Buffer) Channels() int { return b.mat.Channels() }

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width(), b.Height())
}

// At returns sample c of the pixel at column x, row y.
func (b *Buffer) At(x, y, c int) uint8 {
	return b.mat.GetVecbAt(y, x)[c]
}

// Bytes returns a copy of the samples in row-major interleaved order.
func (b *Buffer) Bytes() []byte {
	return b.mat.ToBytes()
}

// Mat exposes the underlying Mat for read-only use by transforms.
// Callers must neither modify nor close it.
func (b *Buffer) Mat() gocv.Mat {
	return b.mat
}

// Clone returns a deep copy owned by the caller.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{mat: b.mat.Clone()}
}

// Equal reports whether both buffers have the same geometry and samples.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.Width() != other.Width() || b.Height() != other.Height() || b.Channels() != other.Channels() {
		return false
	}
	pa, pb := b.Bytes(), other.Bytes()
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}

// ToImage converts the buffer into an image.Image for display.
func (b *Buffer) ToImage() (image.Image, error) {
	img, err := b.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert %dx%d buffer: %w", b.Width(), b.Height(), err)
	}
	return img, nil
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	if b == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%dx%dx%d", b.Width(), b.Height(), b.Channels())
}

// Close releases the native memory. Closing twice or closing nil is a no-op.
func (b *Buffer) Close() {
	if b == nil || b.closed {
		return
	}
	b.mat.Close()
	b.closed = true
}

// Validate checks a Mat for the invariants every Buffer holds.
func Validate(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("%w: image is empty", ErrInvalidParameter)
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrInvalidParameter, mat.Cols(), mat.Rows())
	}

	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("%w: image too large: %dx%d (max: %d)",
			ErrInvalidParameter, mat.Cols(), mat.Rows(), maxDimension)
	}

	if _, ok := matType(mat.Channels()); !ok {
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidParameter, mat.Channels())
	}

	if depth(mat) != gocv.MatTypeCV8U {
		return fmt.Errorf("%w: samples must be 8-bit, got %s", ErrInvalidParameter, sampleType(mat))
	}

	return nil
}

func matType(channels int) (gocv.MatType, bool) {
	switch channels {
	case 1:
		return gocv.MatTypeCV8UC1, true
	case 3:
		return gocv.MatTypeCV8UC3, true
	case 4:
		return gocv.MatTypeCV8UC4, true
	default:
		return 0, false
	}
}

func depth(mat gocv.Mat) gocv.MatType {
	return mat.Type() & 7
}

func sampleType(mat gocv.Mat) string {
	switch depth(mat) {
	case gocv.MatTypeCV8U:
		return "uint8"
	case gocv.MatTypeCV8S:
		return "int8"
	case gocv.MatTypeCV16U:
		return "uint16"
	case gocv.MatTypeCV16S:
		return "int16"
	case gocv.MatTypeCV32S:
		return "int32"
	case gocv.MatTypeCV32F:
		return "float32"
	case gocv.MatTypeCV64F:
		return "float64"
	default:
		return "unknown"
	}
}
