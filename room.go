package main

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	maxPlayersPerRoom     = 20
	maxProjectilesPerRoom = 500
	inboxSize             = 256
	trafficLogEvery       = 5 * time.Second
	// a stalled ticker never integrates more than this in one step
	maxStepDt = 0.25
)

var (
	ErrRoomFull     = errors.New("room is full")
	ErrRoomClosed   = errors.New("room is closed")
	ErrTooManyRooms = errors.New("too many rooms")
)

// Conn is the room's handle on a connected client. Send receives one
// encoded state frame; neither send method may block.
type Conn interface {
	Send([]byte) error
	SendJSON(msg interface{})
	Close() error
}

// RoomOptions are fixed when the room is created. Later joiners to the
// same lobby cannot change them.
type RoomOptions struct {
	Lobby string
	Level int
	Bots  bool
	Seed  int64 // 0 picks a time-based seed
}

// Mailbox commands. Everything that touches room state is one of these,
// handled on the room goroutine.
type (
	Join struct {
		Conn  Conn
		Name  string
		Reply chan<- JoinResult
	}
	JoinResult struct {
		SessionID string
		Err       error
	}
	Leave struct {
		SessionID string
	}
	Input struct {
		SessionID string
		Input     ClientInput
	}
	PoseUpdate struct {
		SessionID string
		Pose      PoseMsg
	}
	Shoot struct {
		SessionID string
		Aim       ShootMsg
	}
	EnterPortal struct {
		SessionID string
	}
)

// Room is one authoritative game session. All state below the mailbox is
// owned by the goroutine running Run.
type Room struct {
	ID      string
	Lobby   string
	Inbox   chan any
	OnEmpty func(r *Room) // called once when the room shuts down

	tuning       Tuning
	opts         RoomOptions
	tickInterval time.Duration
	state        WorldState
	sessions     map[string]*Session
	brains       map[string]*CatBrain
	clients      map[string]Conn
	rng          *rand.Rand
	now          func() time.Time
	tick         uint64

	catSeq        int
	projectileSeq int
	pickupSeq     int

	inputSamples   int
	poseSamples    int
	lastTrafficLog time.Time

	events  EventSink
	log     *zap.SugaredLogger
	metrics *RoomMetrics

	infoMu sync.RWMutex
	info   RoomInfo

	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
	disposed bool
}

// NewRoom builds a room and seeds its starting level. Run must be started
// separately; tests drive Step directly instead.
func NewRoom(id string, opts RoomOptions, tuning Tuning, tick time.Duration, events EventSink) *Room {
	if opts.Lobby == "" {
		opts.Lobby = DefaultLobby
	}
	opts.Level = ClampLevel(float64(opts.Level))
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	if events == nil {
		events = NopSink{}
	}
	r := &Room{
		ID:           id,
		Lobby:        opts.Lobby,
		Inbox:        make(chan any, inboxSize),
		tuning:       tuning,
		opts:         opts,
		tickInterval: tick,
		state:        newWorldState(opts.Level),
		sessions:     make(map[string]*Session),
		brains:       make(map[string]*CatBrain),
		clients:      make(map[string]Conn),
		rng:          rand.New(rand.NewSource(seed)),
		now:          time.Now,
		events:       events,
		log:          Log.With("room", id, "lobby", opts.Lobby),
		metrics:      &RoomMetrics{},
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	r.resetLevelContent()
	r.publishInfo()
	r.emit(EvtRoomCreated, "", "", "level", opts.Level, "bots", opts.Bots)
	return r
}

// Run is the room's event loop. It returns after the room shut down,
// either because the last session left or Stop was called.
func (r *Room) Run() {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()
	defer close(r.done)

	last := r.now()
	for {
		select {
		case <-r.quit:
			r.dispose("stopped")
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			now := r.now()
			dt := now.Sub(last).Seconds()
			last = now
			if dt > maxStepDt {
				dt = maxStepDt
			}
			r.Step(dt)
			r.broadcastState()
		}
		if r.disposed {
			return
		}
	}
}

// Stop asks the room to shut down. Safe to call more than once.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done is closed once Run has returned
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Submit hands a command to the room goroutine without blocking. It
// reports false if the room is gone or its mailbox is full.
func (r *Room) Submit(cmd any) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.done:
		return false
	default:
		r.metrics.IncInboxFull()
		return false
	}
}

// Join adds a client and waits for its session id
func (r *Room) Join(conn Conn, name string) (string, error) {
	reply := make(chan JoinResult, 1)
	select {
	case r.Inbox <- Join{Conn: conn, Name: name, Reply: reply}:
	case <-r.done:
		return "", ErrRoomClosed
	}
	select {
	case res := <-reply:
		return res.SessionID, res.Err
	case <-r.done:
		return "", ErrRoomClosed
	}
}

// Leave removes a session. Unlike Submit it waits for mailbox space, so
// a departure is never lost.
func (r *Room) Leave(id string) {
	select {
	case r.Inbox <- Leave{SessionID: id}:
	case <-r.done:
	}
}

// Info returns the last published room summary
func (r *Room) Info() RoomInfo {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	return r.info
}

// Metrics returns the room's live counters
func (r *Room) Metrics() *RoomMetrics {
	return r.metrics
}

func (r *Room) publishInfo() {
	r.infoMu.Lock()
	r.info = RoomInfo{
		Lobby:        r.Lobby,
		RoomID:       r.ID,
		Players:      len(r.state.Players),
		Level:        r.state.Level,
		PortalActive: r.state.PortalActive(),
	}
	r.infoMu.Unlock()
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		id, err := r.join(c.Conn, c.Name)
		c.Reply <- JoinResult{SessionID: id, Err: err}
	case Leave:
		r.leave(c.SessionID)
	case Input:
		r.stageInput(c.SessionID, c.Input)
	case PoseUpdate:
		r.stagePose(c.SessionID, c.Pose)
	case Shoot:
		r.stageShoot(c.SessionID, c.Aim)
	case EnterPortal:
		r.stagePortal(c.SessionID)
	default:
		r.log.Warnw("unknown room command", "type", fmt.Sprintf("%T", cmd))
	}
}

func (r *Room) join(conn Conn, name string) (string, error) {
	if len(r.state.Players) >= maxPlayersPerRoom {
		return "", ErrRoomFull
	}
	id := GenerateID(4)
	for r.sessions[id] != nil {
		id = GenerateID(4)
	}
	name = CleanName(name, &r.tuning)
	r.state.Players[id] = NewPlayer(id, name, RespawnPoint(r.state.Level), &r.tuning)
	r.sessions[id] = NewSession(id)
	if conn != nil {
		r.clients[id] = conn
		conn.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{ID: id, Lobby: r.Lobby, RoomID: r.ID}})
	}
	r.publishInfo()
	r.emit(EvtSessionJoined, id, id, "name", name, "players", len(r.state.Players))
	return id, nil
}

// leave removes the session, its player and its projectiles. The room
// shuts down when nobody is left.
func (r *Room) leave(id string) {
	if r.sessions[id] == nil {
		return
	}
	delete(r.sessions, id)
	delete(r.state.Players, id)
	delete(r.clients, id)
	r.removeProjectilesByOwner(id)
	r.publishInfo()
	r.emit(EvtSessionLeft, id, id, "players", len(r.state.Players))
	if len(r.sessions) == 0 {
		r.dispose("empty")
	}
}

func (r *Room) stageInput(id string, in ClientInput) {
	sess := r.sessions[id]
	if sess == nil {
		return
	}
	sess.Input = ClampInput(in, r.tuning.MaxTurnInput)
	r.inputSamples++
	r.metrics.IncInput()
}

func (r *Room) stagePose(id string, msg PoseMsg) {
	sess := r.sessions[id]
	p := r.state.Players[id]
	if sess == nil || p == nil {
		return
	}
	pose := ClampPose(msg, p, &r.tuning)
	sess.pendingPose = &pose
	r.poseSamples++
	r.metrics.IncPose()
}

func (r *Room) stageShoot(id string, aim ShootMsg) {
	if sess := r.sessions[id]; sess != nil {
		sess.pendingShot = &aim
	}
}

func (r *Room) stagePortal(id string) {
	if sess := r.sessions[id]; sess != nil {
		sess.portalRequest = true
	}
}

// Step advances the simulation by dt seconds
func (r *Room) Step(dt float64) {
	start := time.Now()
	r.tick++

	r.stepCooldowns(dt)
	r.applyStagedIntents()
	r.stepPlayers(dt)
	if r.opts.Bots {
		r.stepCats(dt)
	}
	r.stepProjectiles(dt)
	r.stepPickups()
	r.stepCoordinator()
	r.logTrafficIfNeeded()

	r.publishInfo()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// Snapshot returns the replicated view of the current tick
func (r *Room) Snapshot() Snapshot {
	return r.state.Snapshot(r.tick)
}

func (r *Room) broadcastState() {
	if len(r.clients) == 0 {
		return
	}
	snap := r.Snapshot()
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		r.log.Errorw("encode snapshot", "err", err)
		return
	}
	var failed []string
	for id, c := range r.clients {
		if err := c.Send(data); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.log.Debugw("dropping client after send failure", "session", id)
		r.leave(id)
	}
}

func (r *Room) logTrafficIfNeeded() {
	if r.inputSamples == 0 && r.poseSamples == 0 {
		return
	}
	now := r.now()
	if now.Sub(r.lastTrafficLog) < trafficLogEvery {
		return
	}
	r.lastTrafficLog = now
	r.emit(EvtTraffic, "", "",
		"players", len(r.state.Players),
		"cats", len(r.state.Cats),
		"inputSamples", r.inputSamples,
		"poseSamples", r.poseSamples,
		"projectiles", len(r.state.Projectiles),
		"pickups", len(r.state.Pickups),
	)
	r.inputSamples = 0
	r.poseSamples = 0
}

// dispose closes every client and reports the room gone. It runs at most
// once, on the room goroutine.
func (r *Room) dispose(reason string) {
	if r.disposed {
		return
	}
	r.disposed = true
	for id, c := range r.clients {
		_ = c.Close()
		delete(r.clients, id)
	}
	r.emit(EvtRoomDisposed, "", "", "reason", reason, "level", r.state.Level)
	if r.OnEmpty != nil {
		r.OnEmpty(r)
	}
}

// emit logs a lifecycle event and forwards it to the journal
func (r *Room) emit(typ, sessionID, subject string, kv ...any) {
	fields := append([]any{"tick", r.tick, "session", sessionID, "subject", subject}, kv...)
	r.log.Debugw(typ, fields...)
	r.events.Emit(Event{
		Type:      typ,
		RoomID:    r.ID,
		Lobby:     r.Lobby,
		Tick:      r.tick,
		SessionID: sessionID,
		Subject:   subject,
		Data:      encodeEventData(kv),
		Time:      r.now().UTC(),
	})
}
