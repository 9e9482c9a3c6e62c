package preview

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/reactor/internal/errors"
)

// maxBody bounds PUT /state bodies.
const maxBody = 1 << 20

// Handler returns the preview routes:
//
//	GET  /              page with the current rendering and the live script
//	GET  /state         store contents as JSON
//	PUT  /state/{key}   write a JSON value to a store key
//	GET  /ws            websocket push of renderings
//	GET  /metrics       Prometheus metrics, when gatherer is not nil
//	GET  /healthz       liveness
func (h *Host) Handler(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)
	if h.opts.HTTPMetrics != nil {
		r.Use(h.opts.HTTPMetrics.middleware)
	}
	if h.opts.Tracer != nil {
		r.Use(tracing(h.opts.Tracer))
	}

	r.Get("/", h.handlePage)
	r.Get("/state", h.handleState)
	r.Put("/state/{key}", h.handleSet)
	r.Get("/ws", h.hub.HandleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (h *Host) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("preview: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (h *Host) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, Page(h.opts.Title, h.HTML()))
}

func (h *Host) handleState(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, errors.FromError(err, "S003"))
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Host) handleSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("S002").Wrap(err))
		return
	}
	value, err := decodeValue(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.FromError(err, "S002"))
		return
	}

	if err := h.Set(r.Context(), key, value); err != nil {
		h.logger.Warn("preview: update failed", "key", key, "error", err)
		status := http.StatusInternalServerError
		if e, ok := err.(*errors.Error); ok && e.Code == "S003" {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, errors.FromError(err, "R001"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": h.HTML()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, e *errors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, e.FormatJSON()+"\n")
}

// Page wraps a rendering in a minimal document with the live script.
func Page(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n<div id=\"reactor-root\">")
	b.WriteString(body)
	b.WriteString("</div>\n")
	b.WriteString(ClientScript)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// ClientScript replaces the root's content with every pushed rendering.
const ClientScript = `<script>
(function() {
    'use strict';

    var delay = 1000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/ws');
        window.reactor = {
            set: function(key, value) {
                ws.send(JSON.stringify({type: 'set', key: key, value: value}));
            }
        };

        ws.onopen = function() { delay = 1000; };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            switch (msg.type) {
                case 'hello':
                case 'render':
                    document.getElementById('reactor-root').innerHTML = msg.html || '';
                    break;
                case 'error':
                    console.error('[reactor]', msg.error, msg.detail || '');
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, 30000);
                connect();
            }, delay);
        };
    }

    connect();
})();
</script>
`

// ListenAndServe serves handler on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	logger.Info("preview: listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.New("S001").Wrap(err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return errors.New("S001").
				WithDetail("Could not listen on " + addr).
				Wrap(err)
		}
		return nil
	}
}
