package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/pkg/markup"
	"github.com/vango-dev/reactor/pkg/reactive"
)

func demoCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through tracking and triggering",
		Long: `Run a few small effects and print what re-runs after each write.

Examples:
  reactor demo
  reactor demo --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if verbose {
				logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			return runDemo(cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log runtime debug records to stderr")

	return cmd
}

func runDemo(out io.Writer, logger *slog.Logger) error {
	rt := reactive.New(reactive.WithLogger(logger))
	a, b := reactive.Name("a"), reactive.Name("b")

	fmt.Fprintln(out, "Sum")
	nums := rt.Observe(map[reactive.Key]any{a: 1, b: 2})
	rt.Effect(func() {
		x, _ := reactive.Value[int](nums, a)
		y, _ := reactive.Value[int](nums, b)
		info(out, "sum = %d", x+y)
	})
	info(out, "set a = 5")
	if err := nums.Set(a, 5); err != nil {
		return err
	}

	fmt.Fprintln(out, "Branch switching")
	flag := reactive.Name("flag")
	branch := rt.Observe(map[reactive.Key]any{flag: true, a: "A", b: "B"})
	rt.Effect(func() {
		if on, _ := reactive.Value[bool](branch, flag); on {
			info(out, "reads a = %v", branch.Get(a))
		} else {
			info(out, "reads b = %v", branch.Get(b))
		}
	})
	info(out, "set flag = false")
	if err := branch.Set(flag, false); err != nil {
		return err
	}
	info(out, "set a = A2 (no longer read)")
	if err := branch.Set(a, "A2"); err != nil {
		return err
	}
	info(out, "set b = B2")
	if err := branch.Set(b, "B2"); err != nil {
		return err
	}

	fmt.Fprintln(out, "Self write")
	count := reactive.Name("count")
	counter := rt.Observe(map[reactive.Key]any{count: 0})
	e, err := selfIncrement(rt, counter, count)
	if err != nil {
		return err
	}
	info(out, "count = %v after %d run(s)", counter.Peek(count), e.Runs())
	info(out, "set count = 10")
	if err := counter.Set(count, 10); err != nil {
		return err
	}
	info(out, "count = %v after %d run(s)", counter.Peek(count), e.Runs())

	fmt.Fprintln(out, "Live markup")
	name := reactive.Name("name")
	page := rt.Observe(map[reactive.Key]any{name: "Ada"})
	node := markup.El("p", map[string]any{"class": "greeting"}, markup.Text("Hello, "), markup.Bound("name"))
	live, err := markup.Live(page, node, markup.Config{Logger: logger}, func(html string) error {
		info(out, "%s", html)
		return nil
	})
	if err != nil {
		return err
	}
	info(out, "set name = Grace")
	if err := page.Set(name, "Grace"); err != nil {
		return err
	}
	live.Dispose()
	info(out, "disposed; set name = Linus")
	if err := page.Set(name, "Linus"); err != nil {
		return err
	}

	fmt.Fprintln(out)
	success(out, "%d targets still tracked", rt.TrackedTargets())
	return nil
}

// selfIncrement registers an effect that reads key and writes key+1. Its
// own write does not re-run it; failures of other effects the write
// triggers are returned.
func selfIncrement(rt *reactive.Runtime, view *reactive.View, key reactive.Key) (*reactive.Effect, error) {
	return rt.EffectE(func() error {
		n, _ := reactive.Value[int](view, key)
		return view.Set(key, n+1)
	})
}
