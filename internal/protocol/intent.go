package protocol

import "encoding/json"

type IntentEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	IntentSetLandmassTracking = "SetLandmassTracking"
	IntentSetTradeStopped     = "SetTradeStopped"
)

type RequestSetLandmassTracking struct {
	Active bool `json:"active"`
}

type RequestSetTradeStopped struct {
	PlayerID string `json:"playerId"`
	Stopped  bool   `json:"stopped"`
}
