package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin        = "join"
	MsgLeave       = "leave"
	MsgInput       = "input"
	MsgPose        = "pose"
	MsgShoot       = "shoot"
	MsgEnterPortal = "enterPortal"
)

// Server -> Client message types
const (
	MsgWelcome = "welcome"
	MsgError   = "error"
	MsgState   = "state" // binary msgpack frames; the type is implied
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg asks to join (or create) the room for a lobby
type JoinMsg struct {
	Name  string   `json:"name,omitempty" jsonschema:"maxLength=64"`
	Lobby string   `json:"lobby,omitempty"`
	Level *float64 `json:"level,omitempty" jsonschema:"description=starting level index; only used when the room is created"`
	Bots  *bool    `json:"bots,omitempty" jsonschema:"description=spawn AI cats; only used when the room is created"`
}

// ClientInput is the sampled movement intent. Pointer fields distinguish
// "missing" from zero; missing values are treated as zero.
type ClientInput struct {
	Forward *float64 `json:"forward,omitempty"`
	Strafe  *float64 `json:"strafe,omitempty"`
	Turn    *float64 `json:"turn,omitempty"`
	Sprint  bool     `json:"sprint,omitempty"`
	Shoot   bool     `json:"shoot,omitempty"`
}

// PoseMsg is a client-predicted position correction. HP and Ammo are
// accepted for compatibility and never applied.
type PoseMsg struct {
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
	Z    *float64 `json:"z,omitempty"`
	RotY *float64 `json:"rotY,omitempty"`
	HP   *float64 `json:"hp,omitempty"`
	Ammo *float64 `json:"ammo,omitempty"`
}

// ShootMsg carries an optional aim direction hint
type ShootMsg struct {
	DirX *float64 `json:"dirX,omitempty"`
	DirY *float64 `json:"dirY,omitempty"`
	DirZ *float64 `json:"dirZ,omitempty"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID     string `json:"id"`
	Lobby  string `json:"lobby"`
	RoomID string `json:"roomId"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// PlayerState is replicated per player
type PlayerState struct {
	ID        string  `json:"id" msgpack:"id"`
	Name      string  `json:"name" msgpack:"name"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	Z         float64 `json:"z" msgpack:"z"`
	RotY      float64 `json:"rotY" msgpack:"rotY"`
	HP        int     `json:"hp" msgpack:"hp"`
	Ammo      int     `json:"ammo" msgpack:"ammo"`
	RespawnIn float64 `json:"respawnIn" msgpack:"respawnIn"`
}

// CatState is replicated per cat
type CatState struct {
	ID   string  `json:"id" msgpack:"id"`
	Type string  `json:"type" msgpack:"type"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	Z    float64 `json:"z" msgpack:"z"`
	RotY float64 `json:"rotY" msgpack:"rotY"`
	HP   int     `json:"hp" msgpack:"hp"`
}

// ProjectileState is replicated per projectile
type ProjectileState struct {
	ID      string  `json:"id" msgpack:"id"`
	OwnerID string  `json:"ownerId" msgpack:"ownerId"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Z       float64 `json:"z" msgpack:"z"`
	VX      float64 `json:"vx" msgpack:"vx"`
	VY      float64 `json:"vy" msgpack:"vy"`
	VZ      float64 `json:"vz" msgpack:"vz"`
	Life    float64 `json:"life" msgpack:"life"`
	Damage  int     `json:"damage" msgpack:"damage"`
}

// PickupState is replicated per pickup
type PickupState struct {
	ID     string  `json:"id" msgpack:"id"`
	Kind   string  `json:"kind" msgpack:"kind"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Z      float64 `json:"z" msgpack:"z"`
	Amount int     `json:"amount" msgpack:"amount"`
}

// Snapshot is the full replicated read model, taken after each tick
type Snapshot struct {
	Tick         uint64            `json:"tick" msgpack:"tick"`
	Level        int               `json:"level" msgpack:"level"`
	PortalActive bool              `json:"portalActive" msgpack:"portalActive"`
	Players      []PlayerState     `json:"players" msgpack:"players"`
	Cats         []CatState        `json:"cats" msgpack:"cats"`
	Projectiles  []ProjectileState `json:"projectiles" msgpack:"projectiles"`
	Pickups      []PickupState     `json:"pickups" msgpack:"pickups"`
}

// RoomInfo is used in the room list
type RoomInfo struct {
	Lobby        string `json:"lobby"`
	RoomID       string `json:"roomId"`
	Players      int    `json:"players"`
	Level        int    `json:"level"`
	PortalActive bool   `json:"portalActive"`
}
