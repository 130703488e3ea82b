// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/poiesic/titlelens"
	"github.com/poiesic/titlelens/config"
	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/dispatch"
	"github.com/poiesic/titlelens/groups"
	"github.com/poiesic/titlelens/lookup/catalog"
	"github.com/poiesic/titlelens/lookup/httpapi"
	"github.com/poiesic/titlelens/sink"
	"github.com/urfave/cli/v2"
)

// sectionPrefix marks a watch input line that switches sections instead of querying.
const sectionPrefix = ":section "

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func modeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "Result mode (name, genre)",
		Value:   "name",
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:   "titlelens",
		Usage:  "Live title search grouped by genre",
		Reader: in,
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to catalog database directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "endpoint",
				Usage: "Remote lookup server URL (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run one query and print the grouped results",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags:     []cli.Flag{modeFlag()},
			},
			{
				Name:   "watch",
				Usage:  "Treat each stdin line as a query change (\":section N\" or \":section <name>\" switches sections)",
				Action: watchCommand,
				Flags:  []cli.Flag{modeFlag()},
			},
			{
				Name:   "seed",
				Usage:  "Load titles from a YAML file into a catalog",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "YAML seed file",
						Required: true,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve a catalog over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var opts []config.Option
	if db := c.String("db"); db != "" {
		opts = append(opts, config.WithCatalog(db, false))
	}
	if endpoint := c.String("endpoint"); endpoint != "" {
		opts = append(opts, config.WithEndpoint(endpoint))
	}

	if path := c.String("config"); path != "" {
		return config.Load(path, opts...)
	}
	cfg := config.Default(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseMode(s string) (core.Mode, error) {
	switch strings.ToLower(s) {
	case "name", "names", "name-only":
		return core.ModeNameOnly, nil
	case "genre", "genres", "genre-info":
		return core.ModeGenreInfo, nil
	default:
		return 0, fmt.Errorf("invalid mode %q: must be one of name, genre", s)
	}
}

// parseSection accepts a section index or a section name such as "Movie Genre".
func parseSection(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	for i, section := range groups.Sections() {
		if strings.EqualFold(section.Name, s) {
			return i, true
		}
	}
	return 0, false
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}
	mode, err := parseMode(c.String("mode"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := titlelens.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Close()

	out := sink.NewWriter(c.App.Writer, engine.Groups())
	outcome, err := engine.Search(c.Context, query, mode, out)
	if err != nil {
		return err
	}
	if outcome.Skipped {
		return fmt.Errorf("query %q is shorter than %d characters", query, engine.Aggregator().Gate().MinLength())
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	mode, err := parseMode(c.String("mode"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := titlelens.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Close()

	session, err := engine.NewSession(dispatch.WithCompletion(func(done dispatch.Completion) {
		slog.Debug("run complete", "query", done.Outcome.Query, "rows", done.Outcome.Rows, "err", done.Err)
	}))
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Attach(dispatch.ScopeEntry, sink.NewWriter(c.App.Writer, engine.Groups())); err != nil {
		return err
	}
	if err := session.SectionChanged(dispatch.ScopeEntry, int(mode)); err != nil {
		return err
	}

	scanner := bufio.NewScanner(c.App.Reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if section, ok := strings.CutPrefix(line, sectionPrefix); ok {
			n, ok := parseSection(section)
			if !ok {
				slog.Warn("ignoring malformed section line", "line", line)
				continue
			}
			if err := session.SectionChanged(dispatch.ScopeEntry, n); err != nil {
				slog.Warn("section change rejected", "section", n, "err", err)
			}
			continue
		}
		if err := session.QueryChanged(dispatch.ScopeEntry, line); err != nil {
			return err
		}
	}
	session.Wait()
	return scanner.Err()
}

func seedCommand(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	cat, err := catalog.Open(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	n, err := cat.Load(c.Context, c.String("file"))
	if err != nil {
		return err
	}
	total, err := cat.Len(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Loaded %d titles (%d in catalog)\n", n, total)
	return nil
}

func serveCommand(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	cat, err := catalog.Open(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	srv, err := httpapi.NewServer(cat, c.String("addr"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
