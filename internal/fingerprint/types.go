package fingerprint

// MatchResult describes how well a query window matched the master.
// Lengths and offsets are in seconds.
type MatchResult struct {
	Found          bool    `json:"found"`
	Confidence     float64 `json:"confidence"`
	CoverageLength float64 `json:"coverage_length"`
	QueryLength    float64 `json:"query_length"`
	TrackStartsAt  float64 `json:"track_starts_at"`
}

// Artifact is the persisted fingerprint of a master track.
type Artifact struct {
	Data            []byte
	DurationSeconds float64
}

// MatchRequest asks the service to compare a window of AudioPath with the
// master fingerprint blob.
type MatchRequest struct {
	AudioPath          string
	Artifact           []byte
	WindowSeconds      float64
	StartOffsetSeconds float64
}
