package models

// FingerprintSnapshot is the set of fingerprint dimensions captured for one
// visit. A nil dimension was not collected.
type FingerprintSnapshot struct {
	Canvas       *CanvasFingerprint       `bson:"canvas,omitempty" json:"canvas,omitempty"`
	WebGL        *WebGLFingerprint        `bson:"webgl,omitempty" json:"webgl,omitempty"`
	Audio        *AudioFingerprint        `bson:"audio,omitempty" json:"audio,omitempty"`
	Fonts        *FontsFingerprint        `bson:"fonts,omitempty" json:"fonts,omitempty"`
	CSS          *CSSFingerprint          `bson:"css,omitempty" json:"css,omitempty"`
	Timing       *TimingFingerprint       `bson:"timing,omitempty" json:"timing,omitempty"`
	WebRTC       *WebRTCFingerprint       `bson:"webrtc,omitempty" json:"webrtc,omitempty"`
	Battery      *BatteryFingerprint      `bson:"battery,omitempty" json:"battery,omitempty"`
	MediaDevices *MediaDevicesFingerprint `bson:"mediaDevices,omitempty" json:"mediaDevices,omitempty"`
	Sensors      *SensorsFingerprint      `bson:"sensors,omitempty" json:"sensors,omitempty"`
	Network      *NetworkFingerprint      `bson:"network,omitempty" json:"network,omitempty"`
	WebAssembly  *WebAssemblyFingerprint  `bson:"webassembly,omitempty" json:"webassembly,omitempty"`
	Storage      *StorageFingerprint      `bson:"storage,omitempty" json:"storage,omitempty"`
	Plugins      *PluginsFingerprint      `bson:"plugins,omitempty" json:"plugins,omitempty"`
}

// CanvasFingerprint holds 2D canvas rendering hashes
type CanvasFingerprint struct {
	Basic       string             `bson:"basic,omitempty" json:"basic,omitempty"`
	Advanced    string             `bson:"advanced,omitempty" json:"advanced,omitempty"`
	Fonts       map[string]string  `bson:"fonts,omitempty" json:"fonts,omitempty"`             // font -> render hash
	TextMetrics map[string]float64 `bson:"textMetrics,omitempty" json:"textMetrics,omitempty"` // sample -> width
	Entropy     *float64           `bson:"entropy,omitempty" json:"entropy,omitempty"`
}

// WebGLFingerprint holds GPU identification and render hashes
type WebGLFingerprint struct {
	Vendor       string            `bson:"vendor,omitempty" json:"vendor,omitempty"`
	Renderer     string            `bson:"renderer,omitempty" json:"renderer,omitempty"`
	Extensions   []string          `bson:"extensions,omitempty" json:"extensions,omitempty"`
	RenderHashes map[string]string `bson:"renderHashes,omitempty" json:"renderHashes,omitempty"`
}

// AudioFingerprint holds audio context hashes
type AudioFingerprint struct {
	ContextHashes map[string]string `bson:"contextHashes,omitempty" json:"contextHashes,omitempty"`
	SampleRate    *float64          `bson:"sampleRate,omitempty" json:"sampleRate,omitempty"`
	Entropy       *float64          `bson:"entropy,omitempty" json:"entropy,omitempty"`
}

type FontsFingerprint struct {
	Detected []string `bson:"detected,omitempty" json:"detected,omitempty"`
}

type CSSFingerprint struct {
	Features       map[string]bool   `bson:"features,omitempty" json:"features,omitempty"`
	ComputedStyles map[string]string `bson:"computedStyles,omitempty" json:"computedStyles,omitempty"`
}

// TimingFingerprint holds hardware info and JS benchmark timings
type TimingFingerprint struct {
	HardwareConcurrency *int               `bson:"hardwareConcurrency,omitempty" json:"hardwareConcurrency,omitempty"`
	DeviceMemory        *float64           `bson:"deviceMemory,omitempty" json:"deviceMemory,omitempty"`
	Timezone            string             `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Metrics             map[string]float64 `bson:"metrics,omitempty" json:"metrics,omitempty"` // benchmark -> ms
	IsTimingAttack      bool               `bson:"isTimingAttack,omitempty" json:"isTimingAttack,omitempty"`
}

type WebRTCFingerprint struct {
	Supported *bool    `bson:"supported,omitempty" json:"supported,omitempty"`
	LocalIPs  []string `bson:"localIPs,omitempty" json:"localIPs,omitempty"`
	Codecs    []string `bson:"codecs,omitempty" json:"codecs,omitempty"`
}

type BatteryFingerprint struct {
	Supported *bool    `bson:"supported,omitempty" json:"supported,omitempty"`
	Charging  *bool    `bson:"charging,omitempty" json:"charging,omitempty"`
	Level     *float64 `bson:"level,omitempty" json:"level,omitempty"`
}

type MediaDevicesFingerprint struct {
	AudioInputs  *int     `bson:"audioInputs,omitempty" json:"audioInputs,omitempty"`
	AudioOutputs *int     `bson:"audioOutputs,omitempty" json:"audioOutputs,omitempty"`
	VideoInputs  *int     `bson:"videoInputs,omitempty" json:"videoInputs,omitempty"`
	GroupIDs     []string `bson:"groupIds,omitempty" json:"groupIds,omitempty"`
}

type SensorsFingerprint struct {
	Available map[string]bool `bson:"available,omitempty" json:"available,omitempty"`
}

type NetworkFingerprint struct {
	ConnectionType string   `bson:"connectionType,omitempty" json:"connectionType,omitempty"`
	EffectiveType  string   `bson:"effectiveType,omitempty" json:"effectiveType,omitempty"`
	Downlink       *float64 `bson:"downlink,omitempty" json:"downlink,omitempty"`
	RTT            *float64 `bson:"rtt,omitempty" json:"rtt,omitempty"`
}

type WebAssemblyFingerprint struct {
	Supported       *bool           `bson:"supported,omitempty" json:"supported,omitempty"`
	Features        map[string]bool `bson:"features,omitempty" json:"features,omitempty"`
	PerformanceHash string          `bson:"performanceHash,omitempty" json:"performanceHash,omitempty"`
}

type StorageFingerprint struct {
	Available map[string]bool `bson:"available,omitempty" json:"available,omitempty"`
	Quota     *float64        `bson:"quota,omitempty" json:"quota,omitempty"`
}

type PluginsFingerprint struct {
	Plugins   []string `bson:"plugins,omitempty" json:"plugins,omitempty"`
	MimeTypes []string `bson:"mimeTypes,omitempty" json:"mimeTypes,omitempty"`
}
