package main

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 64
	maxMessagesPerSec = 120
)

// binaryMarker prefixes queued frames that must go out as binary messages
const binaryMarker = 0xFF

var errClientClosed = errors.New("client closed")

// Client represents a WebSocket connection. The room it joined and its
// session id are only touched by ReadPump.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	remoteAddr string

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	room       *Room
	sessionID  string
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.leaveRoom()
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugw("ws read error", "addr", c.remoteAddr, "err", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			Log.Warnw("rate limit exceeded, disconnecting", "addr", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			var err error
			if len(message) > 0 && message[0] == binaryMarker {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue queues one frame. A full buffer drops the frame; a closed
// client reports an error so the room can let it go.
func (c *Client) enqueue(data []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
	return nil
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// SendJSON sends a JSON text message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		Log.Errorw("marshal error", "err", err)
		return
	}
	_ = c.enqueue(data)
}

// Send queues an encoded state snapshot as a binary message
func (c *Client) Send(data []byte) error {
	msg := make([]byte, len(data)+1)
	msg[0] = binaryMarker
	copy(msg[1:], data)
	return c.enqueue(msg)
}

// Close drops the connection; ReadPump then cleans up
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		Log.Debugw("unmarshal error", "addr", c.remoteAddr, "err", err)
		return
	}

	switch env.T {
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgLeave:
		c.leaveRoom()
	case MsgInput:
		c.submit(Input{SessionID: c.sessionID, Input: decodeInput(env.D)})
	case MsgPose:
		c.submit(PoseUpdate{SessionID: c.sessionID, Pose: decodePose(env.D)})
	case MsgShoot:
		c.submit(Shoot{SessionID: c.sessionID, Aim: decodeShoot(env.D)})
	case MsgEnterPortal:
		c.submit(EnterPortal{SessionID: c.sessionID})
	}
}

// decodePayload accepts an empty payload as the zero value
func decodePayload(data json.RawMessage, v any) bool {
	if len(data) == 0 {
		return true
	}
	return json.Unmarshal(data, v) == nil
}

// Per-tick payloads are coerced field by field: a field of the wrong type
// reads as missing instead of dropping the whole message.

func looseFields(data json.RawMessage) map[string]json.RawMessage {
	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil {
		return nil
	}
	return fields
}

// looseFloat accepts a JSON number or a numeric string
func looseFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// looseBool follows JavaScript truthiness
func looseBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case nil:
		return false
	default:
		return true
	}
}

func decodeInput(data json.RawMessage) ClientInput {
	f := looseFields(data)
	return ClientInput{
		Forward: looseFloat(f["forward"]),
		Strafe:  looseFloat(f["strafe"]),
		Turn:    looseFloat(f["turn"]),
		Sprint:  looseBool(f["sprint"]),
		Shoot:   looseBool(f["shoot"]),
	}
}

func decodePose(data json.RawMessage) PoseMsg {
	f := looseFields(data)
	return PoseMsg{
		X:    looseFloat(f["x"]),
		Y:    looseFloat(f["y"]),
		Z:    looseFloat(f["z"]),
		RotY: looseFloat(f["rotY"]),
		HP:   looseFloat(f["hp"]),
		Ammo: looseFloat(f["ammo"]),
	}
}

func decodeShoot(data json.RawMessage) ShootMsg {
	f := looseFields(data)
	return ShootMsg{
		DirX: looseFloat(f["dirX"]),
		DirY: looseFloat(f["dirY"]),
		DirZ: looseFloat(f["dirZ"]),
	}
}

func (c *Client) submit(cmd any) {
	if c.room == nil {
		return
	}
	if !c.room.Submit(cmd) {
		select {
		case <-c.room.Done():
			// room shut down underneath us
			c.room, c.sessionID = nil, ""
		default:
		}
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if !decodePayload(data, &msg) {
		c.sendError("invalid join")
		return
	}
	c.leaveRoom()

	opts := RoomOptions{Lobby: msg.Lobby, Bots: true}
	if msg.Level != nil {
		opts.Level = ClampLevel(*msg.Level)
	}
	if msg.Bots != nil {
		opts.Bots = *msg.Bots
	}
	room, id, err := c.hub.rooms.JoinLobby(opts, c, msg.Name)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.room = room
	c.sessionID = id
}

func (c *Client) leaveRoom() {
	if c.room == nil {
		return
	}
	c.room.Leave(c.sessionID)
	c.room, c.sessionID = nil, ""
}
