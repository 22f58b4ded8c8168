// Command schema writes the JSON schema of the documents the server sends
// and accepts, for panel clients that validate the stream.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/Ko-stant/frontwatch/internal/protocol"
)

// Wire groups every document on the websocket and /snapshot.json.
type Wire struct {
	Snapshot            protocol.GameSnapshot               `json:"snapshot"`
	Envelope            protocol.PatchEnvelope              `json:"envelope"`
	TrackingChanged     protocol.TrackingChanged            `json:"trackingChanged"`
	Error               protocol.ErrorPayload               `json:"error"`
	SetLandmassTracking protocol.RequestSetLandmassTracking `json:"setLandmassTracking"`
	SetTradeStopped     protocol.RequestSetTradeStopped     `json:"setTradeStopped"`
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(Wire))
	schema.Title = "Frontwatch wire documents"
	schema.Description = "Snapshots, patch envelopes and intent payloads exchanged with panel clients"
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
