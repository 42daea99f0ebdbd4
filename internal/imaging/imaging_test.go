package imaging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustBuffer builds a buffer from raw BGR(A) samples.
func mustBuffer(t *testing.T, width, height, channels int, pix []byte) *Buffer {
	t.Helper()
	b, err := FromBytes(width, height, channels, pix)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

// gradient returns a deterministic BGR test pattern.
func gradient(width, height int) []byte {
	pix := make([]byte, 0, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix = append(pix, byte(x*40), byte(y*60), byte((x+y)*25))
		}
	}
	return pix
}

func TestFromBytes_Geometry(t *testing.T) {
	b := mustBuffer(t, 3, 2, 3, gradient(3, 2))

	assert.Equal(t, 3, b.Width())
	assert.Equal(t, 2, b.Height())
	assert.Equal(t, 3, b.Channels())
	assert.Equal(t, "3x2x3", b.String())
	assert.Equal(t, uint8(80), b.At(2, 0, ChannelB))
	assert.Equal(t, uint8(60), b.At(1, 1, ChannelG))
	if diff := cmp.Diff(gradient(3, 2), b.Bytes()); diff != "" {
		t.Errorf("Bytes() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromBytes_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		w, h, c  int
		pixCount int
	}{
		{"short buffer", 2, 2, 3, 11},
		{"zero width", 0, 2, 3, 0},
		{"two channels", 2, 2, 2, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromBytes(tt.w, tt.h, tt.c, make([]byte, tt.pixCount))
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestClone_IsIndependent(t *testing.T) {
	b, err := FromBytes(2, 2, 3, gradient(2, 2))
	require.NoError(t, err)

	c := b.Clone()
	defer c.Close()
	b.Close()
	b.Close()

	assert.Equal(t, gradient(2, 2), c.Bytes())
}

func TestToGrayscale_LumaWeights(t *testing.T) {
	// pure red, pure green, pure blue in BGR order
	b := mustBuffer(t, 3, 1, 3, []byte{0, 0, 255, 0, 255, 0, 255, 0, 0})

	gray, err := ToGrayscale(b)
	require.NoError(t, err)
	defer gray.Close()

	require.Equal(t, 3, gray.Channels())
	assert.Equal(t, []byte{76, 76, 76, 150, 150, 150, 29, 29, 29}, gray.Bytes())
}

func TestToGrayscale_Idempotent(t *testing.T) {
	b := mustBuffer(t, 5, 4, 3, gradient(5, 4))

	once, err := ToGrayscale(b)
	require.NoError(t, err)
	defer once.Close()

	twice, err := ToGrayscale(once)
	require.NoError(t, err)
	defer twice.Close()

	assert.True(t, once.Equal(twice))
}

func TestToGrayscale_NilInput(t *testing.T) {
	_, err := ToGrayscale(nil)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestExtractChannel_ReplicatesPlane(t *testing.T) {
	pix := gradient(4, 3)
	b := mustBuffer(t, 4, 3, 3, pix)

	for _, ch := range []int{ChannelB, ChannelG, ChannelR} {
		out, err := ExtractChannel(b, ch)
		require.NoError(t, err)

		got := out.Bytes()
		for i := 0; i < 4*3; i++ {
			want := pix[i*3+ch]
			assert.Equal(t, []byte{want, want, want}, got[i*3:i*3+3], "pixel %d channel %d", i, ch)
		}
		out.Close()
	}
}

func TestExtractChannel_OutOfRange(t *testing.T) {
	b := mustBuffer(t, 1, 1, 3, []byte{1, 2, 3})
	_, err := ExtractChannel(b, ChannelA)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSplitChannels_FourChannels(t *testing.T) {
	b := mustBuffer(t, 2, 1, 4, []byte{10, 20, 30, 40, 50, 60, 70, 80})

	planes, err := SplitChannels(b)
	require.NoError(t, err)
	defer func() {
		for _, p := range planes {
			p.Close()
		}
	}()

	require.Len(t, planes, 4)
	assert.Equal(t, []byte{10, 50}, planes[ChannelB].Bytes())
	assert.Equal(t, []byte{30, 70}, planes[ChannelR].Bytes())
	assert.Equal(t, []byte{40, 80}, planes[ChannelA].Bytes())
}

func TestEnsureColor_DropsAlpha(t *testing.T) {
	b := mustBuffer(t, 1, 1, 4, []byte{1, 2, 3, 4})

	out, err := EnsureColor(b)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, []byte{1, 2, 3}, out.Bytes())
}

func TestFileRoundTrip_PNG(t *testing.T) {
	b := mustBuffer(t, 6, 5, 3, gradient(6, 5))
	path := filepath.Join(t.TempDir(), "round.png")

	require.NoError(t, ToFile(path, b))

	loaded, meta, err := FromFile(path)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, Metadata{Width: 6, Height: 5, Channels: 3, SampleType: "uint8", Format: "png"}, meta)
	assert.True(t, b.Equal(loaded))
}

func TestFromFile_SingleChannelExpanded(t *testing.T) {
	plane := mustBuffer(t, 2, 2, 1, []byte{0, 64, 128, 255})
	path := filepath.Join(t.TempDir(), "gray.png")
	require.NoError(t, ToFile(path, plane))

	loaded, meta, err := FromFile(path)
	require.NoError(t, err)
	defer loaded.Close()

	assert.Equal(t, 1, meta.Channels)
	assert.Equal(t, 3, loaded.Channels())
	assert.Equal(t, uint8(128), loaded.At(0, 1, ChannelR))
}

func TestFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := FromFile(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, ErrNotFound)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, _, err = FromFile(garbage)
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

func TestToFile_Errors(t *testing.T) {
	b := mustBuffer(t, 1, 1, 3, []byte{1, 2, 3})
	dir := t.TempDir()

	assert.ErrorIs(t, ToFile(filepath.Join(dir, "out.xyz"), b), ErrWriteFailure)
	assert.ErrorIs(t, ToFile(filepath.Join(dir, "out.png"), nil), ErrWriteFailure)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a/b/photo.JPG"))
	assert.True(t, IsSupported("scan.tif"))
	assert.False(t, IsSupported("notes.txt"))
	assert.False(t, IsSupported("noext"))
}
