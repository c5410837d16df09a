package tracer

import "go.uber.org/zap"

// Stats counts what happened to photons during a trace
type Stats struct {
	Emitted         int // Photons leaving lights
	Recorded        int // Photons stored in the map, one per surface hit
	Escaped         int // Walks that left the scene
	Absorbed        int // Walks ended by Russian roulette (or failed mirror bounce)
	DepthLimited    int // Walks ended at MaxDepth
	DiffuseBranches int // Child walks spawned by diffuse scattering
	Reflected       int
	Transmitted     int
	TotalInternal   int // Transmissions skipped by total internal reflection
	Terminated      int // Walks neither reflected nor transmitted
	Batches         int
}

// Add accumulates another set of counters
func (s *Stats) Add(o Stats) {
	s.Emitted += o.Emitted
	s.Recorded += o.Recorded
	s.Escaped += o.Escaped
	s.Absorbed += o.Absorbed
	s.DepthLimited += o.DepthLimited
	s.DiffuseBranches += o.DiffuseBranches
	s.Reflected += o.Reflected
	s.Transmitted += o.Transmitted
	s.TotalInternal += o.TotalInternal
	s.Terminated += o.Terminated
	s.Batches += o.Batches
}

// Walks returns the number of walks started, emitted plus diffuse children
func (s Stats) Walks() int {
	return s.Emitted + s.DiffuseBranches
}

// Fields renders the counters for structured logging
func (s Stats) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("emitted", s.Emitted),
		zap.Int("recorded", s.Recorded),
		zap.Int("escaped", s.Escaped),
		zap.Int("absorbed", s.Absorbed),
		zap.Int("depth_limited", s.DepthLimited),
		zap.Int("diffuse", s.DiffuseBranches),
		zap.Int("reflected", s.Reflected),
		zap.Int("transmitted", s.Transmitted),
		zap.Int("total_internal", s.TotalInternal),
		zap.Int("terminated", s.Terminated),
	}
}
