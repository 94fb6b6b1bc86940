// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"swatch/internal/logging"
)

// Options configures the development server.
type Options struct {
	Port int
	// Root is the directory served over HTTP, normally dist.base.
	Root string
	// WatchPaths are files or directories whose changes trigger a rebuild.
	WatchPaths []string
	Debounce   time.Duration
}

// BuildFunc runs a docs build. clean requests an emptied output directory.
type BuildFunc func(clean bool) error

// Run builds once, then serves opts.Root and rebuilds on every change until
// ctx is cancelled.
func Run(ctx context.Context, opts Options, build BuildFunc) error {
	log := logging.GetLogger("server")

	hub := newHub(log)
	m := newMetrics(hub)
	build = m.instrument(build)

	if err := build(true); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	ws := newWatchSet(watcher, log)
	for _, path := range opts.WatchPaths {
		if err := ws.addPath(path); err != nil {
			return err
		}
	}

	rebuilder := NewRebuilder(opts.Debounce, func() error { return build(false) }, func() {
		m.reloads.Inc()
		hub.broadcastMessage([]byte("reload"))
	}, log)
	defer rebuilder.Stop()

	go watchForChanges(ctx, ws, rebuilder, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           newMux(hub, opts.Root, m.handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("url", fmt.Sprintf("http://localhost:%d", opts.Port)).Msg("Serving docs, press Ctrl+C to stop")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hub.closeAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newMux(hub *Hub, root string, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
	mux.Handle("/", liveReloadWrapper(http.FileServer(http.Dir(root))))
	return mux
}

// watchSet tracks the directories handed to fsnotify so none is added twice.
type watchSet struct {
	watcher *fsnotify.Watcher
	dirs    map[string]bool
	log     zerolog.Logger
}

func newWatchSet(w *fsnotify.Watcher, log zerolog.Logger) *watchSet {
	return &watchSet{watcher: w, dirs: make(map[string]bool), log: log}
}

func (ws *watchSet) addDir(dir string) {
	dir = filepath.Clean(dir)
	if ws.dirs[dir] {
		return
	}
	if err := ws.watcher.Add(dir); err != nil {
		ws.log.Warn().Err(err).Str("dir", dir).Msg("Error adding watch")
		return
	}
	ws.log.Debug().Str("dir", dir).Msg("Watching directory")
	ws.dirs[dir] = true
}

// addPath watches a directory tree, or the parent directory of a file so
// editors that save by swapping files are still noticed.
func (ws *watchSet) addPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not stat path %s: %w", path, err)
	}
	if !info.IsDir() {
		ws.addDir(filepath.Dir(path))
		return nil
	}
	return filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			ws.addDir(walkPath)
		}
		return nil
	})
}

func watchForChanges(ctx context.Context, ws *watchSet, rebuilder *Rebuilder, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ws.watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := ws.addPath(event.Name); err != nil {
						log.Warn().Err(err).Str("dir", event.Name).Msg("Could not watch new directory")
					}
				}
			}
			rebuilder.Trigger(event.Name)
		case err, ok := <-ws.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// relevant filters out chmod-only events and editor scratch files.
func relevant(event fsnotify.Event) bool {
	if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		return false
	}
	base := filepath.Base(event.Name)
	return !(strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasPrefix(base, ".#"))
}

func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter(w)
		next.ServeHTTP(iw, r)

		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		bodyBytes := iw.body.Bytes()
		if iw.statusCode != http.StatusOK {
			w.WriteHeader(iw.statusCode)
			w.Write(bodyBytes)
			return
		}

		injectedBody := bytes.Replace(bodyBytes, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		w.Header().Set("Content-Length", fmt.Sprint(len(injectedBody)))
		w.WriteHeader(iw.statusCode)
		w.Write(injectedBody)
	})
}

// interceptingWriter buffers a response so the reload script can be injected.
type interceptingWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter(w http.ResponseWriter) *interceptingWriter {
	return &interceptingWriter{
		ResponseWriter: w,
		body:           new(bytes.Buffer),
		header:         make(http.Header),
		statusCode:     http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header {
	return iw.header
}

func (iw *interceptingWriter) Write(b []byte) (int, error) {
	return iw.body.Write(b)
}

func (iw *interceptingWriter) WriteHeader(statusCode int) {
	iw.statusCode = statusCode
}

const liveReloadScript = `
<script>
  (function() {
    var socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'swatch serve'.");
    };
  })();
</script>
`
