package similarity

import (
	"fmt"
	"math"

	"github.com/RishiKendai/fpsim/internal/models"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func ptr[T any](v T) *T {
	return &v
}

func fontList(from, to int) []string {
	fonts := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		fonts = append(fonts, fmt.Sprintf("Font Family %02d", i))
	}
	return fonts
}

// fullSnapshot returns a snapshot with all fourteen dimensions populated and
// no risk indicators
func fullSnapshot() *models.FingerprintSnapshot {
	return &models.FingerprintSnapshot{
		Canvas: &models.CanvasFingerprint{
			Basic:    "9f2c4e81a7b3d05c6e19f48a2b7c3d90",
			Advanced: "41d8cd98f00b204e9800998ecf8427e1",
			Fonts: map[string]string{
				"Arial":           "a1b2c3d4",
				"Times New Roman": "e5f6a7b8",
				"Courier New":     "c9d0e1f2",
			},
			TextMetrics: map[string]float64{"sample": 212.4, "emoji": 33.75},
			Entropy:     ptr(0.92),
		},
		WebGL: &models.WebGLFingerprint{
			Vendor:       "Intel Inc.",
			Renderer:     "Intel Iris OpenGL Engine",
			Extensions:   []string{"ANGLE_instanced_arrays", "EXT_blend_minmax", "OES_texture_float", "WEBGL_lose_context"},
			RenderHashes: map[string]string{"triangle": "7c1e9a", "gradient": "0b44fd"},
		},
		Audio: &models.AudioFingerprint{
			ContextHashes: map[string]string{"oscillator": "35.73833402246237", "compressor": "124.04347527516074"},
			SampleRate:    ptr(48000.0),
			Entropy:       ptr(0.81),
		},
		Fonts: &models.FontsFingerprint{Detected: fontList(0, 24)},
		CSS: &models.CSSFingerprint{
			Features:       map[string]bool{"grid": true, "subgrid": false, "container-queries": true, "has-selector": true},
			ComputedStyles: map[string]string{"font-smoothing": "antialiased", "scrollbar-width": "15px"},
		},
		Timing: &models.TimingFingerprint{
			HardwareConcurrency: ptr(8),
			DeviceMemory:        ptr(16.0),
			Timezone:            "Europe/Berlin",
			Metrics:             map[string]float64{"mathOps": 12.5, "arrayOps": 4.2, "stringOps": 7.9},
		},
		WebRTC: &models.WebRTCFingerprint{
			Supported: ptr(true),
			LocalIPs:  []string{"192.168.1.23"},
			Codecs:    []string{"VP8", "VP9", "H264", "opus"},
		},
		Battery: &models.BatteryFingerprint{
			Supported: ptr(true),
			Charging:  ptr(true),
			Level:     ptr(0.87),
		},
		MediaDevices: &models.MediaDevicesFingerprint{
			AudioInputs:  ptr(1),
			AudioOutputs: ptr(2),
			VideoInputs:  ptr(1),
			GroupIDs:     []string{"b64f0c2a", "93ad71e0"},
		},
		Sensors: &models.SensorsFingerprint{
			Available: map[string]bool{"accelerometer": false, "gyroscope": false, "ambientLight": true},
		},
		Network: &models.NetworkFingerprint{
			ConnectionType: "wifi",
			EffectiveType:  "4g",
			Downlink:       ptr(10.0),
			RTT:            ptr(50.0),
		},
		WebAssembly: &models.WebAssemblyFingerprint{
			Supported:       ptr(true),
			Features:        map[string]bool{"simd": true, "threads": true, "bulkMemory": true},
			PerformanceHash: "e3b0c442",
		},
		Storage: &models.StorageFingerprint{
			Available: map[string]bool{"localStorage": true, "sessionStorage": true, "indexedDB": true},
			Quota:     ptr(2.9e11),
		},
		Plugins: &models.PluginsFingerprint{
			Plugins:   []string{"PDF Viewer", "Chrome PDF Viewer", "Chromium PDF Viewer"},
			MimeTypes: []string{"application/pdf", "text/pdf"},
		},
	}
}

// disjointSnapshot differs from fullSnapshot in every comparable field
func disjointSnapshot() *models.FingerprintSnapshot {
	return &models.FingerprintSnapshot{
		Canvas: &models.CanvasFingerprint{
			Basic:       "00aa11bb22cc33dd44ee55ff66778899",
			Advanced:    "ffeeddccbbaa99887766554433221100",
			Fonts:       map[string]string{"Helvetica": "00000000", "Verdana": "11111111"},
			TextMetrics: map[string]float64{"sample": 150.0, "emoji": 20.0},
			Entropy:     ptr(0.88),
		},
		WebGL: &models.WebGLFingerprint{
			Vendor:       "NVIDIA Corporation",
			Renderer:     "GeForce RTX 3080",
			Extensions:   []string{"EXT_color_buffer_float", "KHR_parallel_shader_compile"},
			RenderHashes: map[string]string{"triangle": "ffffff", "gradient": "aaaaaa"},
		},
		Audio: &models.AudioFingerprint{
			ContextHashes: map[string]string{"oscillator": "124.0434752", "compressor": "35.7383340"},
			SampleRate:    ptr(44100.0),
			Entropy:       ptr(0.77),
		},
		Fonts: &models.FontsFingerprint{Detected: fontList(100, 120)},
		CSS: &models.CSSFingerprint{
			Features:       map[string]bool{"grid": false, "subgrid": true, "container-queries": false, "has-selector": false},
			ComputedStyles: map[string]string{"font-smoothing": "auto", "scrollbar-width": "0px"},
		},
		Timing: &models.TimingFingerprint{
			HardwareConcurrency: ptr(2),
			DeviceMemory:        ptr(4.0),
			Timezone:            "America/Chicago",
			Metrics:             map[string]float64{"mathOps": 40.0, "arrayOps": 15.0, "stringOps": 30.0},
		},
		WebRTC: &models.WebRTCFingerprint{
			Supported: ptr(false),
			LocalIPs:  []string{"10.0.0.7"},
			Codecs:    []string{"AV1", "G722"},
		},
		Battery: &models.BatteryFingerprint{
			Supported: ptr(false),
			Charging:  ptr(false),
			Level:     ptr(0.12),
		},
		MediaDevices: &models.MediaDevicesFingerprint{
			AudioInputs:  ptr(3),
			AudioOutputs: ptr(0),
			VideoInputs:  ptr(2),
			GroupIDs:     []string{"0000aaaa"},
		},
		Sensors: &models.SensorsFingerprint{
			Available: map[string]bool{"accelerometer": true, "gyroscope": true, "ambientLight": false},
		},
		Network: &models.NetworkFingerprint{
			ConnectionType: "cellular",
			EffectiveType:  "3g",
			Downlink:       ptr(1.5),
			RTT:            ptr(300.0),
		},
		WebAssembly: &models.WebAssemblyFingerprint{
			Supported:       ptr(false),
			Features:        map[string]bool{"simd": false, "threads": false, "bulkMemory": false},
			PerformanceHash: "00000000",
		},
		Storage: &models.StorageFingerprint{
			Available: map[string]bool{"localStorage": false, "sessionStorage": false, "indexedDB": false},
			Quota:     ptr(1.0e9),
		},
		Plugins: &models.PluginsFingerprint{
			Plugins:   []string{"Shockwave Flash"},
			MimeTypes: []string{"application/x-shockwave-flash"},
		},
	}
}

func fullBehavioral() *models.BehavioralSnapshot {
	return &models.BehavioralSnapshot{
		MouseMovements: &models.MouseMovements{Entropy: 0.74, Velocity: 1.8, Acceleration: 0.42},
		KeyboardPatterns: &models.KeyboardPatterns{
			TypingSpeed: 62,
			DwellTimes:  []float64{98, 105, 87, 112},
			FlightTimes: []float64{145, 160, 132},
		},
		TouchBehavior: &models.TouchBehavior{TouchPoints: 5, Pressure: 0.5, Gestures: 12},
	}
}
