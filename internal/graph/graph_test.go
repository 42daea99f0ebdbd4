package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

func uniform(t *testing.T, w, h int, bgr ...byte) *imaging.Buffer {
	t.Helper()
	pix := make([]byte, 0, w*h*len(bgr))
	for i := 0; i < w*h; i++ {
		pix = append(pix, bgr...)
	}
	b, err := imaging.FromBytes(w, h, len(bgr), pix)
	require.NoError(t, err)
	return b
}

func pattern(t *testing.T, w, h int) *imaging.Buffer {
	t.Helper()
	pix := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix = append(pix, byte(x*30), byte(y*50), byte(200-x*10))
		}
	}
	b, err := imaging.FromBytes(w, h, 3, pix)
	require.NoError(t, err)
	return b
}

func meta(b *imaging.Buffer) imaging.Metadata {
	return imaging.Metadata{Width: b.Width(), Height: b.Height(), Channels: b.Channels(), SampleType: "uint8", Format: "png"}
}

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := New(nil, nil, nil)
	t.Cleanup(g.Close)
	return g
}

type fakeLoader struct {
	buf *imaging.Buffer
	err error
}

func (f *fakeLoader) LoadImage(string) (*imaging.Buffer, imaging.Metadata, error) {
	if f.err != nil {
		return nil, imaging.Metadata{}, f.err
	}
	return f.buf, meta(f.buf), nil
}

type fakeSink struct {
	path  string
	saved []byte
}

func (f *fakeSink) SaveImage(path string, buf *imaging.Buffer) error {
	f.path = path
	f.saved = buf.Bytes()
	return nil
}

// failing is a blur stand-in whose Apply can be switched to fail.
type failing struct {
	fail bool
}

func (f *failing) Kind() transforms.Kind { return transforms.KindBlur }

func (f *failing) Parameters() []transforms.ParameterInfo {
	return []transforms.ParameterInfo{{Name: "radius", Type: transforms.ParamInt, Min: 1, Max: 20, Default: 5}}
}

func (f *failing) Apply(input *imaging.Buffer, _ transforms.Params) (*imaging.Buffer, error) {
	if input == nil {
		return nil, imaging.ErrNoInput
	}
	if f.fail {
		return nil, errors.New("boom")
	}
	return input.Clone(), nil
}

func TestEmptyChain_OutputIsSource(t *testing.T) {
	g := newTestGraph(t)
	assert.Nil(t, g.Output())

	src := pattern(t, 4, 3)
	require.NoError(t, g.SetSource(context.Background(), src, meta(src)))

	assert.Same(t, src, g.Output())
	assert.Same(t, src, g.Source())
	assert.Equal(t, 4, g.Metadata().Width)
}

func TestBrightnessNode_UpdatesOutput(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	src := uniform(t, 4, 4, 128, 128, 128)
	require.NoError(t, g.SetSource(ctx, src, meta(src)))

	node, err := g.AddNode(ctx, transforms.KindBrightnessContrast)
	require.NoError(t, err)
	require.NoError(t, g.SetParameter(ctx, node.ID(), transforms.ParamBrightness, 20))

	out := g.Output()
	require.NotNil(t, out)
	for _, v := range out.Bytes() {
		require.Equal(t, uint8(148), v)
	}
	assert.Same(t, node.Output(), out)
	assert.Same(t, src, g.Input(node.ID()))
}

func TestChain_AppliesInOrder(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	src := pattern(t, 6, 5)
	require.NoError(t, g.SetSource(ctx, src, meta(src)))

	bc, err := g.AddNode(ctx, transforms.KindBrightnessContrast)
	require.NoError(t, err)
	require.NoError(t, g.SetParameter(ctx, bc.ID(), transforms.ParamContrast, 150))
	_, err = g.AddNode(ctx, transforms.KindGrayscale)
	require.NoError(t, err)

	// Same composition computed by hand.
	bcT := transforms.NewBrightnessContrast()
	step, err := bcT.Apply(src, transforms.Params{transforms.ParamContrast: 150})
	require.NoError(t, err)
	defer step.Close()
	want, err := transforms.NewGrayscale().Apply(step, nil)
	require.NoError(t, err)
	defer want.Close()

	if diff := cmp.Diff(want.Bytes(), g.Output().Bytes()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestSetParameter_UpstreamChangeMatchesRebuild(t *testing.T) {
	ctx := context.Background()

	build := func(contrast int) *Graph {
		g := newTestGraph(t)
		src := pattern(t, 6, 5)
		require.NoError(t, g.SetSource(ctx, src, meta(src)))
		bc, err := g.AddNode(ctx, transforms.KindBrightnessContrast)
		require.NoError(t, err)
		require.NoError(t, g.SetParameter(ctx, bc.ID(), transforms.ParamContrast, contrast))
		_, err = g.AddNode(ctx, transforms.KindGrayscale)
		require.NoError(t, err)
		return g
	}

	edited := build(100)
	before := edited.Output()
	bc := edited.Nodes()[0]
	require.NoError(t, edited.SetParameter(ctx, bc.ID(), transforms.ParamContrast, 170))
	require.NoError(t, edited.SetParameter(ctx, bc.ID(), transforms.ParamBrightness, -15))
	assert.NotSame(t, before, edited.Output())

	fresh := newTestGraph(t)
	src := pattern(t, 6, 5)
	require.NoError(t, fresh.SetSource(ctx, src, meta(src)))
	node, err := fresh.AddNode(ctx, transforms.KindBrightnessContrast)
	require.NoError(t, err)
	require.NoError(t, fresh.SetParameter(ctx, node.ID(), transforms.ParamContrast, 170))
	require.NoError(t, fresh.SetParameter(ctx, node.ID(), transforms.ParamBrightness, -15))
	_, err = fresh.AddNode(ctx, transforms.KindGrayscale)
	require.NoError(t, err)

	if diff := cmp.Diff(fresh.Output().Bytes(), edited.Output().Bytes()); diff != "" {
		t.Errorf("edited chain differs from rebuild (-fresh +edited):\n%s", diff)
	}
}

func TestRemoveLast_RestoresPreviousOutput(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	src := pattern(t, 4, 4)
	require.NoError(t, g.SetSource(ctx, src, meta(src)))

	first, err := g.AddNode(ctx, transforms.KindBrightnessContrast)
	require.NoError(t, err)
	require.NoError(t, g.SetParameter(ctx, first.ID(), transforms.ParamBrightness, 30))
	srcBytes := src.Bytes()
	snapshot := g.Output().Bytes()

	_, err = g.AddNode(ctx, transforms.KindGrayscale)
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())
	require.NotEqual(t, snapshot, g.Output().Bytes())

	require.NoError(t, g.RemoveLast(ctx))
	assert.Equal(t, 1, g.Len())
	assert.Same(t, first.Output(), g.Output())
	if diff := cmp.Diff(snapshot, g.Output().Bytes()); diff != "" {
		t.Errorf("output after remove (-before +after):\n%s", diff)
	}

	require.NoError(t, g.RemoveLast(ctx))
	assert.Same(t, src, g.Output())
	assert.Equal(t, srcBytes, g.Output().Bytes())

	assert.ErrorIs(t, g.RemoveLast(ctx), ErrEmptyChain)
}

func TestAddNode_RejectsSecondSplitter(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	_, err := g.AddNode(ctx, transforms.KindChannelSplitter)
	require.NoError(t, err)
	_, err = g.AddNode(ctx, transforms.KindChannelSplitter)
	assert.ErrorIs(t, err, ErrDuplicateSplitter)
	assert.Equal(t, 1, g.Len())

	require.NoError(t, g.RemoveLast(ctx))
	_, err = g.AddNode(ctx, transforms.KindChannelSplitter)
	assert.NoError(t, err)
}

func TestAddNode_BeforeSourceComputesOnLoad(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	node, err := g.AddNode(ctx, transforms.KindGrayscale)
	require.NoError(t, err)
	assert.False(t, node.HasOutput())
	assert.Nil(t, g.Output())

	src := pattern(t, 3, 3)
	require.NoError(t, g.SetSource(ctx, src, meta(src)))
	require.True(t, node.HasOutput())
	assert.Equal(t, 3, g.Output().Channels())
}

func TestOutputUpdated_FiresOnEffectiveChange(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	var calls int
	g.OnOutputUpdated(func() {
		calls++
		assert.NotNil(t, g.Output())
	})

	_, err := g.AddNode(ctx, transforms.KindGrayscale)
	require.NoError(t, err)
	assert.Equal(t, 0, calls, "nothing to show without a source")
	require.NoError(t, g.RemoveLast(ctx))
	assert.Equal(t, 0, calls)

	src := pattern(t, 3, 3)
	require.NoError(t, g.SetSource(ctx, src, meta(src)))
	assert.Equal(t, 1, calls)

	node, err := g.AddNode(ctx, transforms.KindBrightnessContrast)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	require.NoError(t, g.SetParameter(ctx, node.ID(), transforms.ParamBrightness, 10))
	assert.Equal(t, 3, calls)

	require.NoError(t, g.RemoveLast(ctx))
	assert.Equal(t, 4, calls)
}

func TestSetParameter_Errors(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	node, err := g.AddNode(ctx, transforms.KindBlur)
	require.NoError(t, err)

	assert.ErrorIs(t, g.SetParameter(ctx, "missing", transforms.ParamRadius, 3), ErrNodeNotFound)
	assert.ErrorIs(t, g.SetParameter(ctx, node.ID(), "sigma", 3), ErrUnknownParameter)

	require.NoError(t, g.SetParameter(ctx, node.ID(), transforms.ParamRadius, 99))
	v, ok := node.Param(transforms.ParamRadius)
	require.True(t, ok)
	assert.Equal(t, 20, v)
}

func TestFailingNode_KeepsPreviousOutput(t *testing.T) {
	flaky := &failing{}
	transforms.Register(transforms.KindBlur, func() transforms.Transform { return flaky })
	t.Cleanup(func() {
		transforms.Register(transforms.KindBlur, func() transforms.Transform { return transforms.NewBlur() })
	})

	ctx := context.Background()
	g := newTestGraph(t)
	src := pattern(t, 4, 4)
	require.NoError(t, g.SetSource(ctx, src, meta(src)))

	node, err := g.AddNode(ctx, transforms.KindBlur)
	require.NoError(t, err)
	before := node.Output()
	require.NotNil(t, before)

	var calls int
	g.OnOutputUpdated(func() { calls++ })

	flaky.fail = true
	err = g.SetParameter(ctx, node.ID(), "radius", 3)
	require.Error(t, err)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, node.ID(), nodeErr.NodeID)
	assert.Equal(t, transforms.KindBlur, nodeErr.Kind)
	assert.Same(t, before, node.Output())
	assert.Same(t, before, g.Output())
	assert.Equal(t, 0, calls)

	flaky.fail = false
	require.NoError(t, g.SetParameter(ctx, node.ID(), "radius", 4))
	assert.Equal(t, 1, calls)
}

func TestSetSource_ReSplitsChannels(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)

	red := uniform(t, 2, 2, 0, 0, 200)
	require.NoError(t, g.SetSource(ctx, red, meta(red)))
	_, err := g.AddNode(ctx, transforms.KindChannelSplitter)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), g.Output().At(0, 0, imaging.ChannelB))

	green := uniform(t, 2, 2, 0, 90, 40)
	require.NoError(t, g.SetSource(ctx, green, meta(green)))
	for _, v := range g.Output().Bytes() {
		require.Equal(t, uint8(40), v)
	}
}

func TestReset_DropsExtrasAndRestoresDefaults(t *testing.T) {
	ctx := context.Background()
	g := newTestGraph(t)
	src := pattern(t, 5, 5)
	require.NoError(t, g.SetSource(ctx, src, meta(src)))

	bc, err := g.AddNode(ctx, transforms.KindBrightnessContrast)
	require.NoError(t, err)
	require.NoError(t, g.SetParameter(ctx, bc.ID(), transforms.ParamBrightness, 60))
	_, err = g.AddNode(ctx, transforms.KindBlur)
	require.NoError(t, err)
	_, err = g.AddNode(ctx, transforms.KindChannelSplitter)
	require.NoError(t, err)
	_, err = g.AddNode(ctx, transforms.KindEdgeDetection)
	require.NoError(t, err)

	require.NoError(t, g.Reset(ctx))

	nodes := g.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, bc.ID(), nodes[0].ID())
	v, _ := nodes[0].Param(transforms.ParamBrightness)
	assert.Equal(t, 0, v)

	// Default brightness/contrast is the identity.
	assert.True(t, src.Equal(g.Output()))
}

func TestLoadSource_FailureLeavesGraphUntouched(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{}
	g := New(loader, nil, nil)
	t.Cleanup(g.Close)

	loader.buf = pattern(t, 3, 3)
	require.NoError(t, g.LoadSource(ctx, "first.png"))
	first := g.Source()

	loader.err = imaging.ErrDecodeFailure
	assert.ErrorIs(t, g.LoadSource(ctx, "broken.png"), imaging.ErrDecodeFailure)
	assert.Same(t, first, g.Source())

	assert.ErrorIs(t, New(nil, nil, nil).LoadSource(ctx, "x.png"), ErrNoSource)
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	sink := &fakeSink{}
	g := New(nil, sink, nil)
	t.Cleanup(g.Close)

	assert.ErrorIs(t, g.Save(ctx, "out.png"), imaging.ErrNoInput)

	src := uniform(t, 2, 2, 10, 20, 30)
	require.NoError(t, g.SetSource(ctx, src, meta(src)))
	_, err := g.AddNode(ctx, transforms.KindGrayscale)
	require.NoError(t, err)

	require.NoError(t, g.Save(ctx, "out.png"))
	assert.Equal(t, "out.png", sink.path)
	assert.Equal(t, g.Output().Bytes(), sink.saved)

	assert.ErrorIs(t, New(nil, nil, nil).Save(ctx, "x.png"), ErrNoSink)
}

func TestMutators_OpenOperationSpans(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	g := New(&fakeLoader{buf: pattern(t, 3, 3)}, &fakeSink{}, nil)
	g.tracer = tp.Tracer("test")
	t.Cleanup(g.Close)

	// Nothing to recompute on an empty chain, but the call is still traced.
	require.NoError(t, g.Reset(ctx))
	require.NoError(t, g.LoadSource(ctx, "in.png"))
	node, err := g.AddNode(ctx, transforms.KindGrayscale)
	require.NoError(t, err)
	require.Error(t, g.SetParameter(ctx, "missing", "x", 1))
	require.NoError(t, g.RemoveLast(ctx))
	require.NoError(t, g.Save(ctx, "out.png"))

	status := map[string]codes.Code{}
	for _, s := range recorder.Ended() {
		status[s.Name()] = s.Status().Code
	}
	for _, name := range []string{
		"graph.Reset", "graph.LoadSource", "graph.SetSource", "graph.AddNode",
		"graph.SetParameter", "graph.RemoveLast", "graph.Save",
		"graph.propagate", "graph.node." + node.Kind().String(),
	} {
		assert.Contains(t, status, name)
	}
	assert.Equal(t, codes.Ok, status["graph.Reset"])
	assert.Equal(t, codes.Error, status["graph.SetParameter"])
}
