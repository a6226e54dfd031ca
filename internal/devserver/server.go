// Package devserver is the local-development HTTP server: it serves a
// compiled wasm bundle and broadcasts a full-page live-reload
// notification over WebSocket the moment a recompiled main.wasm lands
// in the served directory.
package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Options configures a Server.
type Options struct {
	// Dir is the directory containing index.html, main.wasm and
	// wasm_exec.js (typically an examples/<name>/public directory).
	Dir string

	// Addr is the "host:port" the server listens on.
	Addr string
}

// reloadMessageType discriminates the payload sent to connected browsers.
type reloadMessageType string

const (
	reloadTypeFull  reloadMessageType = "reload"
	reloadTypeError reloadMessageType = "error"
	reloadTypeClear reloadMessageType = "clear"
)

// reloadMessage is sent to browsers via WebSocket.
type reloadMessage struct {
	Type  reloadMessageType `json:"type"`
	Error string            `json:"error,omitempty"`
}

// Server serves opts.Dir's compiled wasm bundle and watches it for
// rebuilds. This module has no build pipeline of its own to hook a
// "build finished" callback into, so the reload trigger is the bundle
// it already serves: the moment main.wasm's mtime changes, every
// connected browser reloads. A watcher error (e.g. Dir removed out
// from under it) surfaces as the same overlay a build error would.
type Server struct {
	opts Options

	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader

	watcher *fsnotify.Watcher
	http    *http.Server
}

// New builds a Server bound to opts.Dir and arms the bundle watcher.
func New(opts Options) *Server {
	s := &Server{
		opts:    opts,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	if w, err := fsnotify.NewWatcher(); err == nil {
		if err := w.Add(opts.Dir); err == nil {
			s.watcher = w
		} else {
			w.Close()
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/_sauron/reload", s.handleWebSocket)
	r.Get("/", s.serveIndex)
	r.Get("/*", s.serveStatic)

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start blocks serving until ctx is cancelled, watching the bundle
// directory alongside the HTTP listener, then shuts both down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.watcher != nil {
		go s.watchBundle(ctx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.closeClients()
		if s.watcher != nil {
			s.watcher.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// watchBundle debounces fsnotify events on main.wasm into a single
// reload broadcast per rebuild (a `go build` can touch the output file
// more than once while linking) and turns watcher errors into the
// error overlay a build error would otherwise show.
func (s *Server) watchBundle(ctx context.Context) {
	var debounce *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != "main.wasm" {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(150*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.broadcast(reloadMessage{Type: reloadTypeError, Error: err.Error()})
		case <-reload:
			s.broadcast(reloadMessage{Type: reloadTypeFull})
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) broadcast(msg reloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			c.Close()
		}
	}
}

// ClientCount reports how many browsers currently hold the reload
// socket open.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.opts.Dir, "index.html")
	data, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "index.html not found", http.StatusNotFound)
		return
	}
	html := string(data)
	if strings.Contains(html, "</body>") {
		html = strings.Replace(html, "</body>", clientScript+"</body>", 1)
	} else {
		html += clientScript
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	http.FileServer(http.Dir(s.opts.Dir)).ServeHTTP(w, r)
}

// clientScript is injected into index.html, reconnecting with backoff
// and showing a full-screen overlay for the error message type.
const clientScript = `
<script>
(function() {
    'use strict';
    var reconnectDelay = 1000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/_sauron/reload');

        ws.onopen = function() {
            reconnectDelay = 1000;
            clearOverlay();
        };
        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }
            switch (msg.type) {
                case 'reload': location.reload(); break;
                case 'error': showOverlay(msg.error); break;
                case 'clear': clearOverlay(); break;
            }
        };
        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, 30000);
                connect();
            }, reconnectDelay);
        };
        ws.onerror = function() { ws.close(); };
    }

    function showOverlay(message) {
        clearOverlay();
        var overlay = document.createElement('pre');
        overlay.id = 'sauron-error-overlay';
        overlay.style.cssText = 'position:fixed;inset:0;background:#1a1a1a;color:#fff;padding:20px;white-space:pre-wrap;z-index:999999;font-family:monospace;';
        overlay.textContent = message;
        document.body.appendChild(overlay);
    }

    function clearOverlay() {
        var overlay = document.getElementById('sauron-error-overlay');
        if (overlay) overlay.remove();
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
