package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robalyx/deeplweb/internal/cache"
	"github.com/robalyx/deeplweb/internal/glossary"
	"github.com/robalyx/deeplweb/internal/rpc"
	"github.com/robalyx/deeplweb/internal/setup"
	"github.com/robalyx/deeplweb/internal/translator"
	"github.com/robalyx/deeplweb/pkg/utils"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// LogDir specifies where log files are stored.
	LogDir = "logs"
)

var (
	ErrMissingText   = errors.New("no text given on the command line or stdin")
	ErrMissingTarget = errors.New("--to is required")
	ErrMissingFile   = errors.New("FILE argument required")
)

// service is what the commands translate with, cached or not.
type service interface {
	Translate(ctx context.Context, req translator.Request) (*translator.Result, error)
	Detect(ctx context.Context, text string) (string, error)
}

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "deeplweb",
		Usage: "Translate text through the DeepL web translator",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Do not read or write the Redis result cache",
			},
			&cli.IntFlag{
				Name:  "retries",
				Value: -1,
				Usage: "Retries after rate limiting or transport failures (-1 uses the config value)",
			},
		},
		Commands: []*cli.Command{
			translateCommand(),
			detectCommand(),
			batchCommand(),
			glossaryCommand(),
			statsCommand(),
		},
	}

	return app.Run(ctx, os.Args)
}

func translateCommand() *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Translate text given as arguments or on stdin",
		ArgsUsage: "[TEXT...]",
		Flags:     translationFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := requestFromFlags(c)
			if err != nil {
				return err
			}

			req.Text, err = readText(c)
			if err != nil {
				return err
			}

			app, err := setup.InitializeApp("translate", LogDir)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(context.Background())

			svc := newService(ctx, app, c)

			result, err := withRetry(ctx, app, c, func() (*translator.Result, error) {
				return svc.Translate(ctx, req)
			})
			if err != nil {
				return err
			}

			app.Logger.Info("Translated text",
				zap.String("source", result.SourceLanguage),
				zap.String("target", req.TargetLanguage))

			fmt.Println(result.Text)
			return nil
		},
	}
}

func detectCommand() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Detect the language of text given as arguments or on stdin",
		ArgsUsage: "[TEXT...]",
		Action: func(ctx context.Context, c *cli.Command) error {
			text, err := readText(c)
			if err != nil {
				return err
			}

			app, err := setup.InitializeApp("detect", LogDir)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(context.Background())

			svc := newService(ctx, app, c)

			lang, err := withRetry(ctx, app, c, func() (string, error) {
				return svc.Detect(ctx, text)
			})
			if err != nil {
				return err
			}

			fmt.Println(lang)
			return nil
		},
	}
}

func glossaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "glossary",
		Usage:     "Validate a glossary file",
		ArgsUsage: "FILE",
		Action: func(_ context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return ErrMissingFile
			}

			g, err := glossary.Load(c.Args().First())
			if err != nil {
				return err
			}

			fmt.Printf("%s -> %s: %d terms", g.SourceLanguage, g.TargetLanguage, len(g.Entries))
			if g.Duplicates > 0 {
				fmt.Printf(" (%d duplicates dropped)", g.Duplicates)
			}
			fmt.Println()
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show result cache statistics",
		Action: func(ctx context.Context, _ *cli.Command) error {
			app, err := setup.InitializeApp("stats", LogDir)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(context.Background())

			if app.Cache == nil {
				fmt.Println("cache disabled")
				return nil
			}

			stats, err := app.Cache.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("hits: %d\nmisses: %d\n", stats.Hits, stats.Misses)
			return nil
		},
	}
}

// translationFlags are the flags shared by the translate and batch commands.
func translationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "to",
			Aliases: []string{"t"},
			Usage:   "Target language",
		},
		&cli.StringFlag{
			Name:    "from",
			Aliases: []string{"f"},
			Value:   translator.Auto,
			Usage:   "Source language, or auto to detect it",
		},
		&cli.StringFlag{
			Name:  "formality",
			Usage: "Formality of the translation (more or less)",
		},
		&cli.StringFlag{
			Name:    "glossary",
			Aliases: []string{"g"},
			Usage:   "Glossary file forcing the translation of terms",
		},
	}
}

// requestFromFlags builds the request shared by every text of a command.
// Glossary problems are reported before anything is sent.
func requestFromFlags(c *cli.Command) (translator.Request, error) {
	req := translator.Request{
		SourceLanguage: c.String("from"),
		TargetLanguage: c.String("to"),
		Formality:      c.String("formality"),
	}

	if req.TargetLanguage == "" {
		return req, ErrMissingTarget
	}

	if path := c.String("glossary"); path != "" {
		g, err := glossary.Load(path)
		if err != nil {
			return req, err
		}
		req.Glossary = g
	}

	return req, nil
}

// newService opens a translator session, behind the cache when enabled.
func newService(ctx context.Context, app *setup.App, c *cli.Command) service {
	tr := app.NewTranslator(ctx, app.Logger)
	if app.Cache == nil || c.Bool("no-cache") {
		return tr
	}
	return cache.NewTranslator(tr, app.Cache, app.Logger)
}

// withRetry retries operation after temporary failures only.
func withRetry[T any](ctx context.Context, app *setup.App, c *cli.Command, operation func() (T, error)) (T, error) {
	retry := app.Config.Retry
	retries := retry.MaxRetries
	if n := c.Int("retries"); n >= 0 {
		retries = uint64(n)
	}

	opts := utils.GetTranslationRetryOptions(retries,
		time.Duration(retry.Delay)*time.Millisecond,
		time.Duration(retry.MaxDelay)*time.Millisecond)

	return utils.WithRetryIf(ctx, operation, opts, rpc.IsTemporary)
}

// readText joins the arguments or, without arguments, reads stdin.
func readText(c *cli.Command) (string, error) {
	text := strings.Join(c.Args().Slice(), " ")
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrMissingText
	}
	return text, nil
}
