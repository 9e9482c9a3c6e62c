package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/errors"
)

const starterPage = `{
  "type": "main",
  "children": [
    {"type": "h1", "children": ["Hello, ", {"bind": "name"}]},
    {"type": "p", "props": {"className": "count", "data-n": {"bind": "count"}}, "children": ["count = ", {"bind": "count"}]}
  ]
}
`

const starterState = `{"name": "world", "count": 0}
`

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create reactor.json with a starter page",
		Long: `Write a default reactor.json into dir (the current directory by
default), plus page.json and state.json when they do not exist yet.

Examples:
  reactor init
  reactor init ./site
  reactor init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			out := cmd.OutOrStdout()

			if config.Exists(dir) && !force {
				return errors.New("C006").
					WithDetail(config.ConfigFileName + " already exists in " + dir).
					WithSuggestion("Use --force to overwrite it")
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.New("C002").Wrap(err)
			}

			cfg := config.New()
			cfg.Serve.State = "state.json"
			path := filepath.Join(dir, config.ConfigFileName)
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			success(out, "Wrote %s", path)

			for name, body := range map[string]string{
				cfg.Serve.Template: starterPage,
				cfg.Serve.State:    starterState,
			} {
				p := filepath.Join(dir, name)
				if _, err := os.Stat(p); err == nil {
					info(out, "Kept existing %s", p)
					continue
				}
				if err := os.WriteFile(p, []byte(body), 0644); err != nil {
					return errors.New("X001").WithDetail("Could not write " + p).Wrap(err)
				}
				success(out, "Wrote %s", p)
			}

			info(out, "Run: reactor serve --config %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing reactor.json")

	return cmd
}
