// Package devserver serves the development output tree with live reload.
package devserver

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/lokal/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// ReloadPath is the event stream endpoint.
	ReloadPath = "/__lokal/reload"
	// ClientPath serves the live reload client script.
	ClientPath = "/__lokal/reload.js"
	// MetricsPath serves Prometheus metrics.
	MetricsPath = "/metrics"
)

const clientScript = `(() => {
  if (window.__lokalReload) return;
  window.__lokalReload = true;
  function connect() {
    const es = new EventSource("` + ReloadPath + `");
    es.addEventListener("reload", () => location.reload());
    es.onerror = () => { es.close(); setTimeout(connect, 1000); };
  }
  connect();
})();
`

var scriptTag = []byte(`<script src="` + ClientPath + `"></script>`)

// Server serves an output tree, injecting the live reload client into pages.
type Server struct {
	root    string
	hub     *Hub
	metrics http.Handler
}

// NewServer creates a server for root. metrics may be nil.
func NewServer(root string, hub *Hub, metrics http.Handler) *Server {
	return &Server{root: root, hub: hub, metrics: metrics}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ReloadPath, s.hub)
	mux.HandleFunc(ClientPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write([]byte(clientScript))
	})
	if s.metrics != nil {
		mux.Handle(MetricsPath, s.metrics)
	}
	files := http.FileServer(http.Dir(s.root))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if page, ok := s.resolvePage(r.URL.Path); ok {
			s.servePage(w, r, page)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	})
	return mux
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "development server failed")
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return zerr.Wrap(err, "failed to stop development server")
		}
		return nil
	}
}

// resolvePage maps a request path to a page file below the root, following the
// same layout the page generator writes.
func (s *Server) resolvePage(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	candidates := []string{clean}
	if !strings.HasSuffix(clean, domain.PageExt) {
		trimmed := strings.Trim(clean, "/")
		if trimmed == "" {
			candidates = []string{"/index.html"}
		} else {
			candidates = []string{"/" + trimmed + "/index.html", "/" + trimmed + domain.PageExt}
		}
	}
	for _, c := range candidates {
		file := filepath.Join(s.root, filepath.FromSlash(c))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return file, true
		}
	}
	return "", false
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, file string) {
	data, err := os.ReadFile(file) //nolint:gosec // file is resolved below the served root
	if err != nil {
		http.Error(w, "failed to read page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(InjectClient(data))
}

// InjectClient inserts the live reload script before </body>, or appends it.
func InjectClient(page []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if idx < 0 {
		return append(page[:len(page):len(page)], scriptTag...)
	}
	out := make([]byte, 0, len(page)+len(scriptTag))
	out = append(out, page[:idx]...)
	out = append(out, scriptTag...)
	return append(out, page[idx:]...)
}
