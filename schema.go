package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// ProtocolContract lists every message that crosses the websocket. It
// exists only to generate the published schema.
type ProtocolContract struct {
	Join        JoinMsg     `json:"join" jsonschema:"description=client: join or create the room for a lobby"`
	Input       ClientInput `json:"input" jsonschema:"description=client: sampled movement intent"`
	Pose        PoseMsg     `json:"pose" jsonschema:"description=client: predicted position correction"`
	Shoot       ShootMsg    `json:"shoot" jsonschema:"description=client: fire request with optional aim"`
	EnterPortal struct{}    `json:"enterPortal" jsonschema:"description=client: ask to advance through the open portal"`
	Welcome     WelcomeMsg  `json:"welcome" jsonschema:"description=server: join accepted"`
	Error       ErrorMsg    `json:"error" jsonschema:"description=server: request refused"`
	State       Snapshot    `json:"state" jsonschema:"description=server: msgpack binary frame sent after every tick"`
	Rooms       []RoomInfo  `json:"rooms" jsonschema:"description=GET /rooms response"`
}

// BuildProtocolSchema reflects the wire contract into a JSON schema
func BuildProtocolSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(ProtocolContract))
	schema.Title = "Catbattle room protocol"
	schema.Description = "Envelope payloads exchanged over /ws as {\"t\": type, \"d\": payload}"
	return schema
}

// WriteProtocolSchema writes the schema atomically to outPath
func WriteProtocolSchema(outPath string) error {
	data, err := json.MarshalIndent(BuildProtocolSchema(), "", "  ")
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
