package similarity

import "fmt"

// Dimension identifies one category of fingerprint signal
type Dimension int

const (
	Canvas Dimension = iota
	WebGL
	Audio
	Fonts
	CSS
	Timing
	WebRTC
	Sensors
	Battery
	MediaDevices
	Network
	WebAssembly
	Storage
	Plugins
	Behavioral

	NumDimensions = int(Behavioral) + 1
)

var dimensionNames = [NumDimensions]string{
	Canvas:       "canvas",
	WebGL:        "webgl",
	Audio:        "audio",
	Fonts:        "fonts",
	CSS:          "css",
	Timing:       "timing",
	WebRTC:       "webrtc",
	Sensors:      "sensors",
	Battery:      "battery",
	MediaDevices: "mediaDevices",
	Network:      "network",
	WebAssembly:  "webassembly",
	Storage:      "storage",
	Plugins:      "plugins",
	Behavioral:   "behavioral",
}

// Hardware-bound dimensions feed device stability, software ones feed
// environmental stability
var (
	deviceDimensions      = []Dimension{Canvas, WebGL, Audio, Sensors}
	environmentDimensions = []Dimension{Fonts, CSS, Plugins, Network}
)

func (d Dimension) String() string {
	if d < 0 || int(d) >= NumDimensions {
		return fmt.Sprintf("dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// ParseDimension returns the dimension with the given collector name
func ParseDimension(name string) (Dimension, error) {
	for i, n := range dimensionNames {
		if n == name {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dimension: %s", name)
}

// AllDimensions returns every dimension in weight-table order
func AllDimensions() []Dimension {
	dims := make([]Dimension, NumDimensions)
	for i := range dims {
		dims[i] = Dimension(i)
	}
	return dims
}

// Weights holds the static importance of each dimension
type Weights [NumDimensions]float64

// DefaultWeights returns the standard weight table. The weights sum to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Canvas:       0.18,
		WebGL:        0.16,
		Audio:        0.14,
		Fonts:        0.12,
		CSS:          0.08,
		Timing:       0.06,
		WebRTC:       0.05,
		Sensors:      0.04,
		Battery:      0.03,
		MediaDevices: 0.04,
		Network:      0.03,
		WebAssembly:  0.02,
		Storage:      0.02,
		Plugins:      0.02,
		Behavioral:   0.01,
	}
}

func (w Weights) Sum() float64 {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum
}
