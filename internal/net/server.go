package net

import (
	"net/http"
	"net/url"
	"slices"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/webforge/scenecore/internal/config"
)

// Server upgrades HTTP requests on /ws into editor clients.
type Server struct {
	hub      *Hub
	dispatch Dispatcher
	upgrader websocket.Upgrader
	opts     clientOptions
	nextID   atomic.Uint64
	log      *zap.Logger
}

func NewServer(cfg config.NetworkConfig, d Dispatcher, hub *Hub, log *zap.Logger) *Server {
	s := &Server{
		hub:      hub,
		dispatch: d,
		opts: clientOptions{
			outQueueSize:    cfg.OutQueueSize,
			writeTimeout:    cfg.WriteTimeout,
			readTimeout:     cfg.ReadTimeout,
			pingInterval:    cfg.PingInterval,
			maxMessageBytes: cfg.MaxMessageBytes,
		},
		log: log,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	if len(cfg.AllowedOrigins) > 0 {
		allowed := slices.Clone(cfg.AllowedOrigins)
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, err := url.Parse(origin); err != nil {
				return false
			}
			return slices.Contains(allowed, origin)
		}
	}
	return s
}

// Handler returns the HTTP routes: /ws for clients and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	id := s.nextID.Add(1)
	c := newClient(conn, id, s.opts, s.hub.remove, s.log)
	s.hub.add(c)
	c.start(s.dispatch)
}
