package transforms

import (
	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
)

// ParamChannel selects the plane a ChannelSplitter outputs.
const ParamChannel = "channel"

// Channel option indices, in the order they appear in the selector.
const (
	SelectR = iota
	SelectG
	SelectB
	SelectA
)

var channelOptions = []string{"R", "G", "B", "A"}

// planeIndex maps a selector option onto the BGR(A) sample index.
var planeIndex = [...]int{
	SelectR: imaging.ChannelR,
	SelectG: imaging.ChannelG,
	SelectB: imaging.ChannelB,
	SelectA: imaging.ChannelA,
}

// ChannelSplitter splits its input into planes once per input image and
// outputs the selected plane replicated into 3 channels. Changing only the
// selected channel re-uses the cached planes.
type ChannelSplitter struct {
	source *imaging.Buffer // identity only, never read after splitting
	planes []*imaging.Buffer
}

// NewChannelSplitter creates a channel splitter transform
func NewChannelSplitter() *ChannelSplitter {
	return &ChannelSplitter{}
}

func (s *ChannelSplitter) Kind() Kind { return KindChannelSplitter }

func (s *ChannelSplitter) Parameters() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        ParamChannel,
			Type:        ParamEnum,
			Default:     SelectR,
			Options:     channelOptions,
			Description: "Channel to output (A only for images with alpha)",
		},
	}
}

// Available returns the selector options valid for input.
func (s *ChannelSplitter) Available(input *imaging.Buffer) []string {
	if input != nil && input.Channels() == 4 {
		return append([]string(nil), channelOptions...)
	}
	return append([]string(nil), channelOptions[:SelectA]...)
}

func (s *ChannelSplitter) Apply(input *imaging.Buffer, params Params) (*imaging.Buffer, error) {
	if input == nil {
		return nil, imaging.ErrNoInput
	}

	if input != s.source {
		if err := s.split(input); err != nil {
			return nil, err
		}
	}

	selected := Resolve(s.Parameters(), params)[ParamChannel]
	return imaging.Replicate(s.plane(selected))
}

// Planes reports how many planes are cached.
func (s *ChannelSplitter) Planes() int {
	return len(s.planes)
}

// Reset drops the cached planes so the next Apply splits again.
func (s *ChannelSplitter) Reset() {
	for _, p := range s.planes {
		p.Close()
	}
	s.planes = nil
	s.source = nil
}

func (s *ChannelSplitter) split(input *imaging.Buffer) error {
	planes, err := imaging.SplitChannels(input)
	if err != nil {
		return err
	}
	s.Reset()
	s.planes = planes
	s.source = input
	return nil
}

// plane returns the cached plane for a selector option. Selecting A on an
// image without alpha falls back to B; single-plane images always return
// their only plane.
func (s *ChannelSplitter) plane(selected int) *imaging.Buffer {
	if len(s.planes) == 1 {
		return s.planes[0]
	}
	if selected >= len(s.planes) {
		selected = len(s.planes) - 1
	}
	return s.planes[planeIndex[selected]]
}
