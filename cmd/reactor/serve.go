package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/preview"
	"github.com/vango-dev/reactor/pkg/markup"
	"github.com/vango-dev/reactor/pkg/reactive"
)

func serveCmd() *cobra.Command {
	var (
		dir  string
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a document that re-renders as state changes",
		Long: `Serve the template from reactor.json with live updates.

PUT /state/{key} with a JSON body, or a websocket "set" message, writes
a store key; every connected browser receives the new rendering.

Without --config, reactor.json is looked up in the current directory
and its parents; defaults are used when none is found.

With tracing.enabled, spans go to the global OpenTelemetry tracer
provider. The reactor binary installs no exporter, so a program that
embeds this command (or an instrumentation agent) must register one
with otel.SetTracerProvider; otherwise spans are dropped.

Examples:
  reactor serve
  reactor serve --config ./site --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("config") {
				if found, err := config.FindConfigDir("."); err == nil {
					dir = found
				}
			}
			cfg, err := config.LoadOrDefault(dir)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Serve.Port = port
			}
			if host != "" {
				cfg.Serve.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&dir, "config", "c", ".", "Directory containing reactor.json (default: nearest parent with one)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from reactor.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from reactor.json)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	doc, err := markup.ParseFile(cfg.TemplatePath())
	if err != nil {
		return err
	}
	state := map[string]any{}
	if path := cfg.StatePath(); path != "" {
		if state, err = loadState(path); err != nil {
			return err
		}
	}

	opts := preview.Options{
		Template:       doc,
		State:          state,
		Render:         markup.Config{XHTML: cfg.Render.XHTML},
		Logger:         logger,
		GoroutineCheck: cfg.Runtime.GoroutineCheck,
	}

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Metrics = reactive.NewMetrics(
			reactive.WithRegistry(reg),
			reactive.WithNamespace(cfg.Metrics.Namespace),
		)
		opts.HTTPMetrics = preview.NewHTTPMetrics(reg, cfg.Metrics.Namespace)
		gatherer = reg
	}
	opts.Tracer = newTracer(cfg)
	if cfg.Tracing.Enabled {
		logger.Info("serve: tracing through the global OpenTelemetry provider", "tracer", cfg.Tracing.TracerName)
	}

	host, err := preview.NewHost(opts)
	if err != nil {
		return err
	}
	defer host.Close()

	printBanner(out)
	success(out, "Serving %s", cfg.TemplatePath())
	info(out, "Open %s", cfg.URL())
	info(out, "Bound keys: %v", markup.Bindings(doc))

	return preview.ListenAndServe(ctx, cfg.Address(), host.Handler(gatherer), logger)
}

// newTracer returns a tracer from the global OpenTelemetry provider when
// tracing is enabled and a no-op tracer otherwise. The global provider is
// whatever the embedding program registered with otel.SetTracerProvider.
func newTracer(cfg *config.Config) trace.Tracer {
	if cfg.Tracing.Enabled {
		return otel.Tracer(cfg.Tracing.TracerName)
	}
	return noop.NewTracerProvider().Tracer(cfg.Tracing.TracerName)
}
