package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const maxEventsLimit = 500

// Admin serves the operator API
type Admin struct {
	auth    *Auth
	rooms   *RoomManager
	journal *Journal
	hub     *Hub
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// RequireAdmin rejects requests without a valid operator bearer token
func (a *Admin) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := a.auth.ValidateToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

// HandleLogin exchanges the operator password for a token
// POST /admin/login {"password": "..."}
func (a *Admin) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	token, err := a.auth.Login(body.Password, extractIP(r))
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	case ErrRateLimited:
		writeError(w, http.StatusTooManyRequests, err.Error())
	case ErrAdminDisabled:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		Log.Infow("admin login refused", "ip", extractIP(r))
		writeError(w, http.StatusUnauthorized, err.Error())
	}
}

// HandleMetrics reports one room's counters, or a summary of all rooms.
// Both carry journaled event totals by type when the journal is on.
// GET /admin/metrics?lobby=main
func (a *Admin) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	lobby := r.URL.Query().Get("lobby")
	if lobby == "" {
		payload := map[string]any{
			"rooms":   a.rooms.List(),
			"clients": a.hub.ClientCount(),
			"conns":   a.hub.TotalConns(),
		}
		if a.journal != nil {
			payload["journal_dropped"] = a.journal.Dropped()
			a.addEventCounts(payload, "")
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}
	room := a.rooms.Get(lobby)
	if room == nil {
		writeError(w, http.StatusNotFound, "no such lobby")
		return
	}
	info := room.Info()
	payload := map[string]any{
		"room":    info,
		"metrics": room.Metrics().Snapshot(),
	}
	if a.journal != nil {
		a.addEventCounts(payload, info.Lobby)
	}
	writeJSON(w, http.StatusOK, payload)
}

// addEventCounts attaches journaled per-type event totals. A failed read
// leaves the field out rather than failing the whole metrics call.
func (a *Admin) addEventCounts(payload map[string]any, lobby string) {
	counts, err := a.journal.Counts(lobby)
	if err != nil {
		Log.Warnw("count journal events", "lobby", lobby, "err", err)
		return
	}
	payload["events"] = counts
}

// HandleDispose force-closes a lobby's room
// POST /admin/rooms/dispose?lobby=main
func (a *Admin) HandleDispose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	lobby := r.URL.Query().Get("lobby")
	if !a.rooms.Dispose(lobby) {
		writeError(w, http.StatusNotFound, "no such lobby")
		return
	}
	Log.Infow("room disposed by operator", "lobby", CleanLobby(lobby), "ip", extractIP(r))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// HandleEvents lists recent journal rows
// GET /admin/events?lobby=main&limit=50
func (a *Admin) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if a.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal disabled")
		return
	}
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	limit = min(limit, maxEventsLimit)
	lobby := ""
	if q.Get("lobby") != "" {
		lobby = CleanLobby(q.Get("lobby"))
	}
	rows, err := a.journal.Recent(lobby, limit)
	if err != nil {
		Log.Errorw("read journal", "err", err)
		writeError(w, http.StatusInternalServerError, "journal read failed")
		return
	}
	if rows == nil {
		rows = []EventRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}
