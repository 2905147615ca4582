package engine

// EngineConfig holds global, cross-pattern engine settings.
type EngineConfig struct {
	BPM           float64
	OverlapMS     uint8
	ExternalClock bool // reserved; behaviour undefined while true
}

// DefaultEngineConfig returns the documented defaults: 120 BPM, 10ms overlap,
// internal clock.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BPM:       120.0,
		OverlapMS: 10,
	}
}

// normalizedBPM applies the bpm<=0 -> 120 fallback.
func (c EngineConfig) normalizedBPM() float64 {
	if c.BPM <= 0 {
		return 120.0
	}
	return c.BPM
}
