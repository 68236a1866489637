// Package server implements the development server: it serves the build
// tree over HTTP, injects a live-reload script into HTML responses, and
// pushes reload signals to connected pages over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sitekit/sitekit/internal/logging"
)

// reloadScript is injected before </body> of every served HTML page. The
// socket reconnects after a drop so a page left open keeps reloading across
// server restarts and connection hiccups.
const reloadScript = `<script>
(function () {
  var retry;
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var sock = new WebSocket(proto + location.host + "` + ReloadPath + `");
    sock.onopen = function () {
      clearInterval(retry);
      retry = null;
    };
    sock.onmessage = function (ev) {
      if (ev.data === "` + reloadMessage + `") {
        location.reload();
      }
    };
    sock.onclose = function () {
      if (!retry) {
        retry = setInterval(connect, 2000);
      }
    };
  }
  connect();
})();
</script>`

// Server serves one build tree with live reload.
type Server struct {
	root string // build output dir
	host string
	port int
	hub  *Hub
	log  *logging.Logger

	http *http.Server
}

func New(root, host string, port int, log *logging.Logger) *Server {
	s := &Server{
		root: root,
		host: host,
		port: port,
		hub:  NewHub(host, port, log),
		log:  log.WithComponent("server"),
	}

	mux := http.NewServeMux()
	mux.Handle(ReloadPath, s.hub)
	mux.HandleFunc("GET /", s.serveFile)

	s.http = &http.Server{
		Addr:              net.JoinHostPort(host, fmt.Sprint(port)),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Hub exposes the reload hub for the watcher's dispatch loop.
func (s *Server) Hub() *Hub { return s.hub }

// URL returns the address pages are served at.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s:%d/", s.host, s.port)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving", "url", s.URL(), "root", s.root)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

// serveFile resolves a request path inside the build root. Directories fall
// back to their index.html; HTML responses get the reload script injected.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	target := filepath.Join(s.root, filepath.FromSlash(clean))

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
		_, err = os.Stat(target)
	}
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if strings.EqualFold(filepath.Ext(target), ".html") {
		s.serveHTML(w, r, target)
		return
	}
	http.ServeFile(w, r, target)
}

// serveHTML injects the reload script before </body>, or appends it when
// the page has no closing body tag.
func (s *Server) serveHTML(w http.ResponseWriter, r *http.Request, target string) {
	data, err := os.ReadFile(target)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	page := string(data)
	if i := strings.LastIndex(strings.ToLower(page), "</body>"); i >= 0 {
		page = page[:i] + reloadScript + page[i:]
	} else {
		page += reloadScript
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(page)); err != nil {
		s.log.Debug("write failed", "path", r.URL.Path, "error", err)
	}
}
