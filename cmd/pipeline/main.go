package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/nguyentantai21042004/lecture-flow/internal/config"
	"github.com/nguyentantai21042004/lecture-flow/internal/logger"
	"github.com/nguyentantai21042004/lecture-flow/internal/media"
	"github.com/nguyentantai21042004/lecture-flow/internal/pipeline"
	"github.com/nguyentantai21042004/lecture-flow/internal/portal"
	"github.com/nguyentantai21042004/lecture-flow/internal/report"
	"github.com/nguyentantai21042004/lecture-flow/internal/summarizer"
	"github.com/nguyentantai21042004/lecture-flow/internal/transcriber"
	"github.com/nguyentantai21042004/lecture-flow/internal/watcher"
	"github.com/nguyentantai21042004/lecture-flow/pkg/executor"
)

func main() {
	_ = godotenv.Load() // loads .env

	app := &cli.App{
		Name:  "lecture-flow",
		Usage: "fetch gated conference lectures, transcribe them, distill bullet notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the YAML config file",
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			runCommand(),
			watchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "list catalog results for a query",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Required: true},
			&cli.IntFlag{Name: "top", Value: 10, Usage: "maximum results"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg, log, err := setup(c)
			if err != nil {
				return err
			}

			lib := portal.New(cfg, log)
			sess, err := lib.Authenticate(ctx, cfg.Credentials)
			if err != nil {
				return err
			}

			results, err := lib.Search(ctx, sess, c.String("query"), c.Int("top"))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}

			for i, r := range results {
				line := fmt.Sprintf("[%d] %s", i+1, r.Title)
				if r.Speaker != "" {
					line += " — " + r.Speaker
				}
				if r.Year != "" {
					line += " (" + r.Year + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "search, then download/transcribe/summarize the selected results",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Required: true},
			&cli.IntFlag{Name: "top", Value: 10, Usage: "maximum results"},
			&cli.StringFlag{Name: "pick", Usage: "comma-separated 1-based result numbers (default: all)"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg, log, err := setup(c)
			if err != nil {
				return err
			}

			lib := portal.New(cfg, log)
			sess, err := lib.Authenticate(ctx, cfg.Credentials)
			if err != nil {
				return err
			}

			results, err := lib.Search(ctx, sess, c.String("query"), c.Int("top"))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No results.")
				return nil
			}

			selected, err := pickResults(results, c.String("pick"))
			if err != nil {
				return err
			}

			jobs := pipeline.NewJobs(selected, cfg.Paths.Output)
			orch := pipeline.New(
				cfg,
				media.New(cfg, executor.New(), log),
				transcriber.New(cfg, log),
				summarizer.New(cfg, log),
				log,
			)

			outcomes := orch.Run(ctx, sess, jobs, func(completed, total int, label string) {
				fmt.Printf("[%3d%%] %d/%d  %s\n", completed*100/total, completed, total, label)
			})

			if cfg.Report.Enabled {
				reportPath := filepath.Join(cfg.Paths.Output, "outcomes.xlsx")
				if err := report.Write(reportPath, outcomes); err != nil {
					log.Warn(ctx, "Failed to write report: %v", err)
				}
			}

			failures := 0
			for _, o := range outcomes {
				if o.Done() {
					fmt.Printf("DONE   %s -> %s\n", o.Job.Result.Title, o.Job.NotesPath)
				} else {
					failures++
					fmt.Printf("FAILED %s (%s): %v\n", o.Job.Result.Title, o.FailedStage, o.Err)
				}
			}
			if failures > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d job(s) failed", failures, len(outcomes)), 1)
			}
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "transcribe and summarize recordings dropped into the watch folder",
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg, log, err := setup(c)
			if err != nil {
				return err
			}
			if cfg.Paths.Watch == "" {
				return fmt.Errorf("paths.watch is not configured")
			}
			if err := os.MkdirAll(cfg.Paths.Watch, 0755); err != nil {
				return err
			}

			tr := transcriber.New(cfg, log)
			sum := summarizer.New(cfg, log)

			handler := func(ctx context.Context, audioPath string) error {
				title := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
				slug := pipeline.Slugify(title)

				transcript, err := tr.Transcribe(ctx, audioPath)
				if err != nil {
					return err
				}
				transcriptPath := filepath.Join(cfg.Paths.Output, slug+".md")
				if err := os.WriteFile(transcriptPath, []byte(transcript+"\n"), 0644); err != nil {
					return err
				}

				notes, err := sum.Summarize(ctx, transcript, title, "")
				if err != nil {
					return err
				}
				notesPath := filepath.Join(cfg.Paths.Output, slug+".notes.md")
				return os.WriteFile(notesPath, []byte(notes+"\n"), 0644)
			}

			w, err := watcher.New(cfg.Paths.Watch, handler, log, cfg.Performance.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
}

// setup loads config, prepares the output directory and builds the logger.
func setup(c *cli.Context) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.Paths.Output, 0755); err != nil {
		return nil, nil, fmt.Errorf("create output directory: %w", err)
	}
	return cfg, logger.New(cfg.Logging.Level), nil
}

// pickResults resolves a "1,3,5" style selection against the result list.
// An empty selection means everything.
func pickResults(results []portal.SearchResult, pick string) ([]portal.SearchResult, error) {
	pick = strings.TrimSpace(pick)
	if pick == "" {
		return results, nil
	}

	var selected []portal.SearchResult
	for _, field := range strings.FieldsFunc(pick, func(r rune) bool { return r == ',' || r == ' ' }) {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", field)
		}
		if n < 1 || n > len(results) {
			return nil, fmt.Errorf("selection %d out of range 1..%d", n, len(results))
		}
		selected = append(selected, results[n-1])
	}
	return selected, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
