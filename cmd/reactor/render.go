package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/markup"
	"github.com/vango-dev/reactor/pkg/reactive"
)

func renderCmd() *cobra.Command {
	var (
		statePath string
		xhtml     bool
		sets      []string
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a JSON markup document",
		Long: `Render a JSON markup document to HTML.

Bindings ({"bind": "key"}) read from the state file. Each --set writes a
key after the first rendering; the document is printed again whenever a
write changes a key it reads.

Examples:
  reactor render page.json
  reactor render page.json --state state.json
  reactor render page.json --state state.json --set count=2 --set title='"Hi"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], statePath, xhtml, sets)
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "JSON object with the store contents")
	cmd.Flags().BoolVar(&xhtml, "xhtml", false, "Self-close void elements")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Write KEY=JSON after rendering (repeatable)")

	return cmd
}

func runRender(out, errOut io.Writer, path, statePath string, xhtml bool, sets []string) error {
	doc, err := markup.ParseFile(path)
	if err != nil {
		return err
	}

	state := map[string]any{}
	if statePath != "" {
		if state, err = loadState(statePath); err != nil {
			return err
		}
	}

	rt := reactive.New()
	fields := make(map[reactive.Key]any, len(state))
	for k, v := range state {
		fields[reactive.Name(k)] = v
	}
	view := rt.Observe(fields)

	config := markup.Config{
		XHTML:  xhtml,
		Logger: slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
	if len(sets) == 0 {
		config.Resolve = markup.ViewResolver(view)
		html, err := markup.NewRenderer(config).RenderToString(doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, html)
		return err
	}

	if _, err := markup.Live(view, doc, config, func(html string) error {
		_, err := fmt.Fprintln(out, html)
		return err
	}); err != nil {
		return err
	}

	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			return errors.Newf(errors.CategoryCLI, "invalid --set %q", s).
				WithSuggestion("Use KEY=JSON, for example --set count=2")
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			// Bare words are strings.
			value = raw
		}
		if err := view.Set(reactive.Name(key), value); err != nil {
			return err
		}
	}
	return nil
}

// loadState reads a JSON object of initial store values.
func loadState(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("X001").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	var state map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&state); err != nil {
		e := errors.New("X002").
			WithSuggestion("The state file must hold a single JSON object").
			Wrap(err)
		switch se := err.(type) {
		case *json.SyntaxError:
			e = e.WithOffset(path, data, se.Offset)
		case *json.UnmarshalTypeError:
			e = e.WithOffset(path, data, se.Offset)
		}
		return nil, e
	}
	if state == nil {
		state = map[string]any{}
	}
	return state, nil
}
