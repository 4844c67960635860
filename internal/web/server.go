// Package web exposes matches over JSON and websockets.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"richrain/internal/catalog"
	"richrain/internal/game"
	"richrain/internal/random"
	"richrain/internal/results"
	"richrain/internal/session"
)

// Match is a running match, the hub presenting it and the inbox its
// inputs go through.
type Match struct {
	Controller *game.Controller
	Hub        *Hub
	Inbox      *game.Inbox
}

// ResultsArchive is the read side of the results archive.
type ResultsArchive interface {
	Match(ctx context.Context, id string) (game.Results, bool, error)
	Recent(ctx context.Context, n int) ([]string, error)
	Leaderboard(ctx context.Context, n int) ([]results.Leader, error)
}

const (
	defaultListSize = 10
	maxListSize     = 100
)

type Server struct {
	Catalog *catalog.Store
	Matches session.Store[*Match]
	Results game.ResultsSink
	// Archive serves the leaderboard and past matches when set.
	Archive ResultsArchive
	Logger  *zap.Logger
	// Seed fixes the random source of every new match when non-zero.
	Seed uint64
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /matches", s.handleCreate)
	mux.HandleFunc("GET /matches/{id}", s.handleSnapshot)
	mux.HandleFunc("POST /matches/{id}/roll", s.handleRoll)
	mux.HandleFunc("POST /matches/{id}/rank", s.handleRank)
	mux.HandleFunc("GET /matches/{id}/ws", s.handleSocket)
	mux.HandleFunc("GET /matches/{id}/results.pdf", s.handleResultsPDF)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /archive", s.handleRecent)
	mux.HandleFunc("GET /archive/{id}", s.handleArchived)
	return mux
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

type createRequest struct {
	Rounds int `json:"rounds"`
}

type createResponse struct {
	ID string `json:"id"`
}

type rankRequest struct {
	PlayerID string `json:"playerId"`
}

// POST /matches
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if req.Rounds < 0 {
		http.Error(w, "rounds must be positive", http.StatusBadRequest)
		return
	}

	id := s.Matches.NewID()
	log := s.logger()
	hub := NewHub(s.Catalog.Pacing().For, log)
	opts := game.Options{
		MatchID:   id,
		Logger:    log,
		Presenter: hub,
		Results:   s.Results,
	}
	if s.Seed != 0 {
		opts.Random = random.New(s.Seed)
	}
	ctrl, err := game.NewController(s.Catalog.Setup(req.Rounds), opts)
	if err != nil {
		log.Error("create match", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	inbox := game.NewInbox(ctrl)
	if err := s.Matches.Put(r.Context(), id, &Match{Controller: ctrl, Hub: hub, Inbox: inbox}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	go inbox.Run(context.Background())
	writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

// GET /matches/{id}
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.Controller.Snapshot())
}

// POST /matches/{id}/roll
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	if !m.Inbox.Roll() {
		http.Error(w, "not waiting for a roll", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// POST /matches/{id}/rank
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		http.Error(w, "playerId required", http.StatusBadRequest)
		return
	}
	if !m.Inbox.SelectRank(req.PlayerID) {
		http.Error(w, "not ranking this player", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GET /matches/{id}/ws
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}
	log := s.logger().With(zap.String("match_id", m.Controller.ID()))
	c := m.Hub.attach(conn)
	defer m.Hub.detach(c)

	if err := c.send(Event{Kind: KindSnapshot, Payload: m.Controller.Snapshot()}); err != nil {
		return
	}
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket closed", zap.Error(err))
			}
			return
		}
		in, err := decodeInbound(b)
		if err != nil {
			log.Debug("bad websocket frame", zap.Error(err))
			continue
		}
		accepted := true
		switch in.Type {
		case "ack":
			m.Hub.Ack(in.Seq)
		case "roll":
			accepted = m.Inbox.Roll()
		case "rank":
			accepted = m.Inbox.SelectRank(in.PlayerID)
		default:
			log.Debug("unknown websocket frame", zap.String("type", in.Type))
		}
		if !accepted {
			rej := Rejection{Type: in.Type, PlayerID: in.PlayerID, Phase: m.Controller.Phase()}
			if err := c.send(Event{Kind: KindRejected, Payload: rej}); err != nil {
				return
			}
		}
	}
}

// GET /matches/{id}/results.pdf
func (s *Server) handleResultsPDF(w http.ResponseWriter, r *http.Request) {
	m, ok := s.match(w, r)
	if !ok {
		return
	}
	res, done := m.Controller.Results()
	if !done {
		http.Error(w, "match is not over", http.StatusConflict)
		return
	}
	pdf, err := results.Render(res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="results-%s.pdf"`, res.MatchID))
	if _, err := w.Write(pdf); err != nil {
		s.logger().Debug("write results sheet", zap.Error(err))
	}
}

// GET /leaderboard?n=10
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !s.archived(w) {
		return
	}
	top, err := s.Archive.Leaderboard(r.Context(), listSize(r))
	if err != nil {
		s.logger().Error("read leaderboard", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

// GET /archive?n=10
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if !s.archived(w) {
		return
	}
	ids, err := s.Archive.Recent(r.Context(), listSize(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GET /archive/{id}
func (s *Server) handleArchived(w http.ResponseWriter, r *http.Request) {
	if !s.archived(w) {
		return
	}
	res, ok, err := s.Archive.Match(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "match not archived", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) archived(w http.ResponseWriter) bool {
	if s.Archive == nil {
		http.Error(w, "archive not configured", http.StatusNotFound)
		return false
	}
	return true
}

// listSize reads ?n=, clamped to [1, maxListSize].
func listSize(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n <= 0 {
		return defaultListSize
	}
	return min(n, maxListSize)
}

func (s *Server) match(w http.ResponseWriter, r *http.Request) (*Match, bool) {
	m, ok, err := s.Matches.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return nil, false
	}
	return m, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Reap drops finished matches that nobody is watching.
func (s *Server) Reap(ctx context.Context) int {
	n, err := s.Matches.Sweep(ctx, func(_ string, m *Match) bool {
		_, over := m.Controller.Results()
		if !over || m.Hub.Clients() > 0 {
			return false
		}
		m.Inbox.Close()
		return true
	})
	if err != nil {
		s.logger().Warn("reap matches", zap.Error(err))
	}
	if n > 0 {
		s.logger().Info("reaped finished matches", zap.Int("count", n), zap.Int("running", s.Matches.Len()))
	}
	return n
}
