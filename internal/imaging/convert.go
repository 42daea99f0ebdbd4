package imaging

import (
	"fmt"

	"gocv.io/x/gocv"
)

// EnsureColor returns a 3-channel copy of b. Single-channel input is
// replicated, alpha is dropped.
func EnsureColor(b *Buffer) (*Buffer, error) {
	if b == nil {
		return nil, ErrNoInput
	}

	out := gocv.NewMat()
	switch b.Channels() {
	case 1:
		gocv.CvtColor(b.mat, &out, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(b.mat, &out, gocv.ColorBGRAToBGR)
	default:
		b.mat.CopyTo(&out)
	}
	return Wrap(out)
}

// Intensity returns the single-channel luma plane of b.
func Intensity(b *Buffer) (*Buffer, error) {
	if b == nil {
		return nil, ErrNoInput
	}

	gray := gocv.NewMat()
	switch b.Channels() {
	case 1:
		b.mat.CopyTo(&gray)
	case 4:
		gocv.CvtColor(b.mat, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(b.mat, &gray, gocv.ColorBGRToGray)
	}
	return Wrap(gray)
}

// ToGrayscale converts b to luma intensity replicated into 3 channels so
// every buffer in a chain stays uniformly drawable.
func ToGrayscale(b *Buffer) (*Buffer, error) {
	gray, err := Intensity(b)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	return Replicate(gray)
}

// Replicate expands a single-channel buffer into 3 identical channels.
func Replicate(plane *Buffer) (*Buffer, error) {
	if plane == nil {
		return nil, ErrNoInput
	}
	if plane.Channels() != 1 {
		return nil, fmt.Errorf("%w: replicate needs 1 channel, got %d", ErrInvalidParameter, plane.Channels())
	}

	out := gocv.NewMat()
	gocv.CvtColor(plane.mat, &out, gocv.ColorGrayToBGR)
	return Wrap(out)
}

// ExtractChannel returns plane index of b replicated into 3 channels.
func ExtractChannel(b *Buffer, index int) (*Buffer, error) {
	if b == nil {
		return nil, ErrNoInput
	}
	if index < 0 || index >= b.Channels() {
		return nil, fmt.Errorf("%w: channel %d of %d", ErrInvalidParameter, index, b.Channels())
	}

	plane := gocv.NewMat()
	gocv.ExtractChannel(b.mat, &plane, index)
	wrapped, err := Wrap(plane)
	if err != nil {
		return nil, err
	}
	defer wrapped.Close()

	return Replicate(wrapped)
}

// SplitChannels returns every plane of b as a single-channel buffer.
// The caller owns and must close each of them.
func SplitChannels(b *Buffer) ([]*Buffer, error) {
	if b == nil {
		return nil, ErrNoInput
	}

	mats := gocv.Split(b.mat)
	planes := make([]*Buffer, 0, len(mats))
	for i, m := range mats {
		p, err := Wrap(m)
		if err != nil {
			for _, done := range planes {
				done.Close()
			}
			for _, rest := range mats[i+1:] {
				rest.Close()
			}
			return nil, fmt.Errorf("split plane %d: %w", i, err)
		}
		planes = append(planes, p)
	}
	return planes, nil
}
