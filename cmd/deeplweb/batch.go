package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/robalyx/deeplweb/internal/batch"
	"github.com/robalyx/deeplweb/internal/cache"
	"github.com/robalyx/deeplweb/internal/setup"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Translate every line of a file, one session per worker",
		ArgsUsage: "[FILE]",
		Flags: append(translationFlags(),
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   1,
				Usage:   "Number of parallel sessions",
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := requestFromFlags(c)
			if err != nil {
				return err
			}

			lines, err := readLines(c.Args().First())
			if err != nil {
				return err
			}

			app, err := setup.InitializeApp("batch", LogDir)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(context.Background())

			useCache := app.Cache != nil && !c.Bool("no-cache")

			factory := func(ctx context.Context, worker int) batch.Translator {
				logger := app.LogManager.GetWorkerLogger(fmt.Sprintf("worker_%d", worker))
				tr := app.NewTranslator(ctx, logger)
				if useCache {
					return cache.NewTranslator(tr, app.Cache, logger)
				}
				return tr
			}

			items, err := batch.Run(ctx, lines, batch.Options{
				SourceLanguage: req.SourceLanguage,
				TargetLanguage: req.TargetLanguage,
				Formality:      req.Formality,
				Glossary:       req.Glossary,
				Workers:        int(c.Int("workers")),
			}, factory, app.Logger)

			failed := 0
			for _, item := range items {
				switch {
				case item.Err != nil:
					failed++
					fmt.Fprintf(os.Stderr, "%d\t%v\n", item.Index+1, item.Err)
				case item.Result != nil:
					fmt.Printf("%d\t%s\n", item.Index+1, item.Result.Text)
				}
			}

			app.Logger.Info("Batch finished",
				zap.Int("lines", len(lines)),
				zap.Int("failed", failed))

			return err
		},
	}
}

// readLines returns the non-blank lines of path, or of stdin when path is
// empty or "-".
func readLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer file.Close()
		r = file
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return lines, nil
}
