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
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/hybridrag"
	"github.com/poiesic/hybridrag/config"
	"github.com/poiesic/hybridrag/ingestion"
	"github.com/poiesic/hybridrag/mcpserver"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func fileFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Document to ingest before running (repeatable)",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hybridrag",
		Usage: "Hybrid semantic and keyword retrieval over documents",
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
				Usage:   "Path to a YAML or TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible service host URL (overrides the config file)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Ingest documents and rank their chunks against a query",
				ArgsUsage: "<query>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					fileFlag(),
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results (defaults to the configured value)",
						Value:   -1,
					},
					&cli.Float64Flag{
						Name:    "alpha",
						Aliases: []string{"a"},
						Usage:   "Semantic weight between 0 and 1 (defaults to the configured value)",
						Value:   -1,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ingest documents and answer a question from them",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     []cli.Flag{fileFlag()},
			},
			{
				Name:   "mcp",
				Usage:  "Serve ingest_document, search_chunks and ask over MCP on stdio",
				Action: mcpCommand,
				Flags:  []cli.Flag{fileFlag()},
			},
		},
	}
}

// loadConfig reads --config when given and applies command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if host := c.String("host"); host != "" {
		cfg.AI.Host = host
		cfg.AI.EmbeddingHost = ""
		cfg.AI.ChatHost = ""
	}
	return cfg, cfg.Validate()
}

// openEngine builds an engine from the configuration and ingests --file
// documents into it.
func openEngine(ctx context.Context, c *cli.Context, cfg *config.Config) (*hybridrag.Engine, error) {
	engine, err := hybridrag.NewEngine(
		hybridrag.WithConfig(cfg),
		hybridrag.WithIngestionOptions(ingestion.WithProgress(c.App.ErrWriter)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	files := c.StringSlice("file")
	if len(files) == 0 {
		return engine, nil
	}

	reports, err := engine.IngestFiles(ctx, files...)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}
	for _, r := range reports {
		slog.Info("ingested document", "filename", r.Filename, "chunks", r.ChunksCreated, "batch", r.BatchID)
	}
	return engine, nil
}

func queryCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("query is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	topK := cfg.Search.TopK
	if c.Int("top-k") >= 0 {
		topK = c.Int("top-k")
	}
	alpha := cfg.Search.Alpha
	if c.Float64("alpha") >= 0 {
		alpha = c.Float64("alpha")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := openEngine(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Query(ctx, query, topK, alpha)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	out := c.App.Writer
	if len(results) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s #%d (final %.4f, semantic %.4f, keyword %.4f)\n",
			i+1, r.Chunk.Filename, r.Chunk.Position, r.FinalScore, r.SemanticScore, r.KeywordScore)
		fmt.Fprintf(out, "   %s\n", preview(r.Chunk.Text, 200))
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("question is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := openEngine(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	answer, err := engine.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	out := c.App.Writer
	fmt.Fprintln(out, answer.Text)
	if answer.UsedSearch && len(answer.Sources) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Sources (query: %q):\n", answer.Query)
		for _, s := range answer.Sources {
			fmt.Fprintf(out, "  - %s #%d (%.4f)\n", s.Chunk.Filename, s.Chunk.Position, s.FinalScore)
		}
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(context.Background(), c, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	srv, err := mcpserver.NewServer(engine, mcpserver.WithDefaults(cfg.Search.TopK, cfg.Search.Alpha))
	if err != nil {
		return err
	}
	return srv.ServeStdio()
}

// preview shortens text to at most n characters on one line.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
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
