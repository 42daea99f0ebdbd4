package transforms

import (
	"fmt"
	"strings"
)

// Kind enumerates the transform node types a chain can hold.
type Kind int

const (
	KindGrayscale Kind = iota
	KindBrightnessContrast
	KindChannelSplitter
	KindBlur
	KindEdgeDetection
)

var kindNames = map[Kind]string{
	KindGrayscale:          "grayscale",
	KindBrightnessContrast: "brightness_contrast",
	KindChannelSplitter:    "channel_splitter",
	KindBlur:               "blur",
	KindEdgeDetection:      "edge_detection",
}

var kindTitles = map[Kind]string{
	KindGrayscale:          "Grayscale",
	KindBrightnessContrast: "Brightness/Contrast",
	KindChannelSplitter:    "Channel Splitter",
	KindBlur:               "Blur",
	KindEdgeDetection:      "Edge Detection",
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindGrayscale, KindBrightnessContrast, KindChannelSplitter, KindBlur, KindEdgeDetection}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Title returns the human readable node name.
func (k Kind) Title() string {
	if title, ok := kindTitles[k]; ok {
		return title
	}
	return "Unknown"
}

// Extra reports whether a full reset drops nodes of this kind from the
// chain instead of restoring their defaults.
func (k Kind) Extra() bool {
	switch k {
	case KindChannelSplitter, KindBlur, KindEdgeDetection:
		return true
	default:
		return false
	}
}

// ParseKind accepts either the identifier ("edge_detection") or the title
// ("Edge Detection"), case-insensitively.
func ParseKind(s string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if needle == k.String() || needle == strings.ToLower(k.Title()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
