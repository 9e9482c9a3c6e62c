package preview

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/markup"
	"github.com/vango-dev/reactor/pkg/reactive"
)

// Options configures a Host.
type Options struct {
	// Template is the markup tree kept in sync with the store.
	Template *markup.Node

	// State is the initial store contents, keyed by name.
	State map[string]any

	// Render configures the renderer. Resolve is replaced by the store.
	Render markup.Config

	// Title is the page title.
	Title string

	// Logger receives host and runtime records. Defaults to discarding.
	Logger *slog.Logger

	// Metrics, when set, receives runtime metrics.
	Metrics *reactive.Metrics

	// HTTPMetrics, when set, records preview requests and websocket clients.
	HTTPMetrics *HTTPMetrics

	// Tracer, when set, traces triggers and preview requests.
	Tracer trace.Tracer

	// GoroutineCheck confines the runtime to the executor goroutine.
	GoroutineCheck bool

	// Queue is the executor queue size.
	Queue int
}

// Host owns a reactive runtime on an executor goroutine, keeps the
// template rendered through a live binding and pushes every new rendering
// to websocket clients.
type Host struct {
	opts   Options
	logger *slog.Logger
	exec   *Executor
	hub    *Hub

	// Owned by the executor goroutine.
	rt     *reactive.Runtime
	record *reactive.Record
	state  *reactive.View
	live   *reactive.Effect
}

// NewHost creates the runtime and the live binding. The returned host must
// be closed.
func NewHost(opts Options) (*Host, error) {
	if opts.Template == nil {
		return nil, errors.New("S001").WithDetail("No template to serve")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Title == "" {
		opts.Title = "reactor preview"
	}
	opts.Render.Logger = opts.Logger

	h := &Host{
		opts:   opts,
		logger: opts.Logger,
		exec:   NewExecutor(opts.Queue),
		hub:    NewHub(opts.Logger),
	}
	h.hub.metrics = opts.HTTPMetrics
	h.hub.OnMessage(h.handleMessage)

	err := h.exec.Do(context.Background(), h.start)
	if err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// start runs on the executor goroutine.
func (h *Host) start() error {
	rtOpts := []reactive.Option{reactive.WithLogger(h.logger)}
	if h.opts.Metrics != nil {
		rtOpts = append(rtOpts, reactive.WithMetrics(h.opts.Metrics))
	}
	if h.opts.Tracer != nil {
		rtOpts = append(rtOpts, reactive.WithTracer(h.opts.Tracer))
	}
	if h.opts.GoroutineCheck {
		rtOpts = append(rtOpts, reactive.WithGoroutineCheck())
	}
	h.rt = reactive.New(rtOpts...)

	fields := make(map[reactive.Key]any, len(h.opts.State))
	for k, v := range h.opts.State {
		fields[reactive.Name(k)] = v
	}
	h.record = reactive.NewRecord(fields)
	state, err := h.rt.Wrap(h.record)
	if err != nil {
		return Coded(err)
	}
	h.state = state

	live, err := markup.Live(h.state, h.opts.Template, h.opts.Render, func(html string) error {
		h.hub.Broadcast(html)
		return nil
	})
	if err != nil {
		return Coded(err)
	}
	h.live = live
	h.logger.Info("preview: template bound", "keys", markup.Bindings(h.opts.Template))
	return nil
}

// Set writes a store key. The live binding re-renders synchronously when
// the template reads key, and the new rendering is broadcast before Set
// returns. Trigger spans are children of the span in ctx.
func (h *Host) Set(ctx context.Context, key string, value any) error {
	return h.exec.Do(ctx, func() error {
		if err := h.state.SetContext(ctx, reactive.Name(key), value); err != nil {
			return Coded(err)
		}
		h.logger.Debug("preview: state updated", "key", key)
		return nil
	})
}

// Snapshot returns a copy of the store contents.
func (h *Host) Snapshot(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := h.exec.Do(ctx, func() error {
		out = make(map[string]any, h.record.Len())
		for _, k := range h.record.Keys() {
			if k.IsSymbol() {
				continue
			}
			out[k.Name()], _ = h.record.Field(k)
		}
		return nil
	})
	return out, err
}

// HTML returns the latest rendering.
func (h *Host) HTML() string {
	return h.hub.Current()
}

// Hub returns the websocket hub.
func (h *Host) Hub() *Hub {
	return h.hub
}

// Close disposes the live binding and stops the executor.
func (h *Host) Close() {
	_ = h.exec.Do(context.Background(), func() error {
		if h.live != nil {
			h.live.Dispose()
		}
		if h.rt != nil && h.record != nil {
			h.rt.Forget(h.record)
		}
		return nil
	})
	h.exec.Close()
	h.hub.Close()
}

func (h *Host) handleMessage(clientID string, msg Message) {
	if msg.Type != MessageSet {
		h.hub.Send(clientID, errorMessage("", errors.New("S002").
			WithDetail("Unsupported message type "+strconv.Quote(string(msg.Type)))))
		return
	}
	if msg.Key == "" {
		h.hub.Send(clientID, errorMessage("", errors.New("S002").WithDetail("Missing key")))
		return
	}
	value, err := decodeValue(msg.Value)
	if err != nil {
		h.hub.Send(clientID, errorMessage(msg.Key, Coded(err)))
		return
	}
	if err := h.Set(context.Background(), msg.Key, value); err != nil {
		h.logger.Warn("preview: update failed", "client", clientID, "key", msg.Key, "error", err)
		h.hub.Send(clientID, errorMessage(msg.Key, Coded(err)))
	}
}

// decodeValue decodes a JSON value; an empty message is null.
func decodeValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.New("S002").WithDetail("Value is not valid JSON").Wrap(err)
	}
	return v, nil
}
