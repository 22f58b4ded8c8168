package protocol

type PatchEnvelope struct {
	Sequence uint64 `json:"seq"`
	Session  string `json:"session,omitempty"`
	Type     string `json:"type"`
	Payload  any    `json:"payload"`
}

const (
	PatchSnapshotPublished   = "SnapshotPublished"
	PatchTrackingChanged     = "LandmassTrackingChanged"
	PatchTradeStoppedChanged = "TradeStoppedChanged"
	PatchError               = "Error"
)

type TrackingChanged struct {
	Active bool `json:"active"`
}

type ErrorPayload struct {
	Intent  string `json:"intent"`
	Message string `json:"message"`
}
