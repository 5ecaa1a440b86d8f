package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/JPM1118/diapo/internal/input"
	"github.com/JPM1118/diapo/internal/slides"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 5 * time.Second
	clientBuffer = 8
)

// Server is a remote clicker: HTTP endpoints that drive the controller
// and a websocket that pushes every slide change.
type Server struct {
	log             *zap.Logger
	defaultInterval time.Duration
	router          *mux.Router
	upgrader        websocket.Upgrader

	mu      sync.Mutex
	ctrl    *slides.Controller
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan slides.Info
}

// command is the JSON body accepted on the websocket.
type command struct {
	Action string `json:"action"`
	Slide  int    `json:"slide,omitempty"`
}

type autoPlayRequest struct {
	Interval string `json:"interval"`
}

type autoPlayResponse struct {
	Running  bool   `json:"running"`
	Interval string `json:"interval,omitempty"`
}

// New creates a server. Attach a controller before serving requests.
func New(log *zap.Logger, defaultInterval time.Duration) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		log:             log,
		defaultInterval: defaultInterval,
		clients:         make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

// Attach points the server at a controller and subscribes to its
// changes. Connected clients receive the new controller's position.
func (s *Server) Attach(c *slides.Controller) {
	s.mu.Lock()
	s.ctrl = c
	s.mu.Unlock()

	c.AddPresenter(s)
	s.broadcast(c.Info())
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SlideChanged implements slides.Presenter.
func (s *Server) SlideChanged(current, total int) {
	s.broadcast(slides.Info{
		Current: current,
		Total:   total,
		IsFirst: current == 1,
		IsLast:  current == total,
	})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("remote listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.closeClients()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/info", s.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/next", s.handleAction(input.Next)).Methods(http.MethodPost)
	r.HandleFunc("/api/prev", s.handleAction(input.Previous)).Methods(http.MethodPost)
	r.HandleFunc("/api/first", s.handleAction(input.First)).Methods(http.MethodPost)
	r.HandleFunc("/api/last", s.handleAction(input.Last)).Methods(http.MethodPost)
	r.HandleFunc("/api/goto/{n}", s.handleGoTo).Methods(http.MethodPost)
	r.HandleFunc("/api/autoplay", s.handleStartAutoPlay).Methods(http.MethodPost)
	r.HandleFunc("/api/autoplay", s.handleStopAutoPlay).Methods(http.MethodDelete)
	r.HandleFunc("/ws", s.handleWebSocket)
	return r
}

func (s *Server) controller(w http.ResponseWriter) *slides.Controller {
	s.mu.Lock()
	c := s.ctrl
	s.mu.Unlock()
	if c == nil {
		http.Error(w, "presentation not ready", http.StatusServiceUnavailable)
	}
	return c
}

// GET /api/info
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w)
	if c == nil {
		return
	}
	writeJSON(w, c.Info())
}

// POST /api/{next,prev,first,last}
func (s *Server) handleAction(action input.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := s.controller(w)
		if c == nil {
			return
		}
		input.Dispatch(c, input.Command{Action: action})
		writeJSON(w, c.Info())
	}
}

// POST /api/goto/{n}
// Out-of-range targets are ignored and answer with the unchanged position.
func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil {
		http.Error(w, "slide must be a number", http.StatusBadRequest)
		return
	}
	c := s.controller(w)
	if c == nil {
		return
	}
	input.Dispatch(c, input.Command{Action: input.Jump, Slide: n})
	writeJSON(w, c.Info())
}

// POST /api/autoplay {"interval":"10s"}
func (s *Server) handleStartAutoPlay(w http.ResponseWriter, r *http.Request) {
	var req autoPlayRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	interval := s.defaultInterval
	if req.Interval != "" {
		d, err := time.ParseDuration(req.Interval)
		if err != nil || d <= 0 {
			http.Error(w, "interval must be a positive duration", http.StatusBadRequest)
			return
		}
		interval = d
	}

	c := s.controller(w)
	if c == nil {
		return
	}
	c.StartAutoPlay(interval)
	d, running := c.AutoPlay()
	writeJSON(w, autoPlayResponse{Running: running, Interval: d.String()})
}

// DELETE /api/autoplay
func (s *Server) handleStopAutoPlay(w http.ResponseWriter, r *http.Request) {
	c := s.controller(w)
	if c == nil {
		return
	}
	c.StopAutoPlay()
	writeJSON(w, autoPlayResponse{Running: false})
}

// GET /ws
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan slides.Info, clientBuffer)}
	s.mu.Lock()
	if s.ctrl != nil {
		cl.send <- s.ctrl.Info()
	}
	s.clients[cl] = struct{}{}
	s.mu.Unlock()

	go s.writePump(cl)
	s.readPump(cl)
}

func (s *Server) readPump(cl *client) {
	defer s.unregister(cl)

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}

		// A malformed command is dropped; the client stays connected.
		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.log.Debug("bad remote command", zap.Error(err))
			continue
		}

		s.mu.Lock()
		c := s.ctrl
		s.mu.Unlock()
		if c == nil {
			continue
		}

		switch cmd.Action {
		case "next":
			c.Next()
		case "prev", "previous":
			c.Previous()
		case "first":
			c.GoTo(1)
		case "last":
			c.GoTo(c.Info().Total)
		case "goto":
			c.GoTo(cmd.Slide)
		default:
			s.log.Debug("unknown remote action", zap.String("action", cmd.Action))
		}
	}
}

func (s *Server) writePump(cl *client) {
	defer cl.conn.Close()

	for info := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := cl.conn.WriteJSON(info); err != nil {
			s.log.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
	cl.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (s *Server) unregister(cl *client) {
	s.mu.Lock()
	if _, ok := s.clients[cl]; ok {
		delete(s.clients, cl)
		close(cl.send)
	}
	s.mu.Unlock()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	for cl := range s.clients {
		delete(s.clients, cl)
		close(cl.send)
	}
	s.mu.Unlock()
}

// broadcast never blocks: slow clients miss intermediate positions.
func (s *Server) broadcast(info slides.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cl := range s.clients {
		select {
		case cl.send <- info:
		default:
			select {
			case <-cl.send:
			default:
			}
			select {
			case cl.send <- info:
			default:
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
