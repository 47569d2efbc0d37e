package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gocarina/gocsv"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"foodarena/arena"
	"foodarena/config"
	"foodarena/protocol"
	"foodarena/store"
)

const (
	qrSize          = 256
	maxSessionsRows = 1000
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Server holds what the HTTP handlers need. DB, Analytics and Auth are
// optional.
type Server struct {
	Hub       *Hub
	Room      *arena.Room
	Auth      *Auth
	DB        *store.DB
	Analytics *store.Analytics
	Config    config.ServerConfig
	Log       *zap.SugaredLogger
}

// Routes configures HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// WebSocket endpoint stays outside the request logger
	r.Get("/ws", s.serveWS)

	r.Group(func(r chi.Router) {
		r.Use(s.requestLogger)

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})
		r.Get("/qr.png", s.serveQR)

		if s.Auth != nil {
			r.Post("/admin/login", s.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(s.Auth.RequireAdmin)
				r.Get("/admin/metrics", s.handleMetrics)
				r.Post("/admin/kick/{id}", s.handleKick)
				if s.DB != nil {
					r.Get("/admin/sessions.csv", s.handleSessions)
				}
			})
		}

		// Serve static files with no-cache so browsers always revalidate
		fs := http.FileServer(http.Dir(s.Config.StaticDir))
		r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			fs.ServeHTTP(w, r)
		}))
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.Debugw("http", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "dur", time.Since(start))
	})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	codec, err := protocol.CodecByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ip := extractIP(r)
	if !s.Hub.CanAccept(ip) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Warnw("upgrade error", "err", err)
		return
	}

	s.Hub.TrackConnect(ip)

	client := NewClient(s.Hub, conn, codec, ip)
	if !s.Hub.Register(client) {
		s.Hub.TrackDisconnect(ip)
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) serveQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(s.Config.PublicURL, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	token, err := s.Auth.Login(req.Password, extractIP(r))
	switch {
	case errors.Is(err, errRateLimited):
		respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	case err != nil:
		s.Log.Infow("admin login failed", "ip", extractIP(r))
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		respondJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Room.Stats(r.Context())
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	body := map[string]any{
		"room":        s.Room.Metrics().Snapshot(),
		"world":       stats,
		"connections": s.Hub.TotalConns(),
	}
	if s.Analytics != nil {
		if counts, err := s.Analytics.EventCounts(1); err == nil {
			body["events_24h"] = counts
		}
	}
	respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleKick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := s.Room.Kick(r.Context(), id)
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "player not found"})
		return
	}
	s.Log.Infow("player kicked", "id", id)
	respondJSON(w, http.StatusOK, map[string]string{"kicked": id})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxSessionsRows)
	}
	rows, err := s.DB.TopSessions(limit)
	if err != nil {
		s.Log.Errorw("top sessions", "err", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []store.SessionRow{}
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := gocsv.Marshal(rows, w); err != nil {
		s.Log.Errorw("sessions csv", "err", err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
