package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace/noop"

	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	scoringauth "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/auth"
	scoringmetrics "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/metrics"
	"github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/parsers"
	scoringqueue "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/queue"
	"github.com/spicygolf/spicy-sub003/config"
	"github.com/spicygolf/spicy-sub003/db/bundb"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &cli.App{
		Name:  "scorer",
		Usage: "score golf games and run the scoring service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			scoreCommand(),
			traceCommand(),
			chartCommand(),
			importCommand(),
			rescoreCommand(),
			tokenCommand(),
			serveCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

var rulesFlag = &cli.StringFlag{Name: "rules", Usage: "YAML rule-set applied when the file declares no options"}

// offlineService scores snapshots without a database.
func offlineService(c *cli.Context) (*scoringservice.ScoringService, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := scoringservice.NewScoringService(nil, parsers.NewFactory(), logger, scoringmetrics.NewNoop(), noop.NewTracerProvider().Tracer("scorer"), nil)
	if rules := c.String("rules"); rules != "" {
		decls, err := config.LoadRuleSet(rules)
		if err != nil {
			return nil, err
		}
		svc.WithDefaultOptions(decls)
	}
	return svc, nil
}

// readSnapshot parses the file named by the first argument, or stdin as a
// JSON snapshot when the argument is "-" or missing.
func readSnapshot(c *cli.Context) (*scoringdomain.GameSnapshot, error) {
	name := c.Args().First()
	if name == "" || name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return parsers.NewJSONParser().Parse(data)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	parser, err := parsers.NewFactory().GetParser(name)
	if err != nil {
		return nil, err
	}
	return parser.Parse(data)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func scoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "score a snapshot or scorecard file and print the scoreboard",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{rulesFlag},
		Action: func(c *cli.Context) error {
			svc, err := offlineService(c)
			if err != nil {
				return err
			}
			snap, err := readSnapshot(c)
			if err != nil {
				return err
			}
			res, err := svc.ScoreSnapshot(c.Context, snap)
			if err != nil {
				return err
			}
			for _, ce := range res.ConfigErrors {
				fmt.Fprintf(os.Stderr, "warning: %s\n", ce)
			}
			return printJSON(res)
		},
	}
}

type stageOutput struct {
	Stage       string                    `json:"stage"`
	Fingerprint string                    `json:"fingerprint"`
	Scoreboard  *scoringdomain.Scoreboard `json:"scoreboard,omitempty"`
}

func traceCommand() *cli.Command {
	return &cli.Command{
		Name:      "trace",
		Usage:     "print the scoreboard after every pipeline stage",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			rulesFlag,
			&cli.BoolFlag{Name: "summary", Usage: "print only stage names and fingerprints"},
		},
		Action: func(c *cli.Context) error {
			svc, err := offlineService(c)
			if err != nil {
				return err
			}
			snap, err := readSnapshot(c)
			if err != nil {
				return err
			}
			stages, err := svc.TraceSnapshot(c.Context, snap)
			if err != nil {
				return err
			}
			out := make([]stageOutput, 0, len(stages))
			for _, st := range stages {
				o := stageOutput{Stage: st.Stage, Fingerprint: st.Scoreboard.Fingerprint()}
				if !c.Bool("summary") {
					o.Scoreboard = &st.Scoreboard
				}
				out = append(out, o)
			}
			return printJSON(out)
		},
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:      "chart",
		Usage:     "render a running-totals chart as PNG",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			rulesFlag,
			&cli.StringFlag{Name: "out", Value: "chart.png", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			svc, err := offlineService(c)
			if err != nil {
				return err
			}
			snap, err := readSnapshot(c)
			if err != nil {
				return err
			}
			res, err := svc.ScoreSnapshot(c.Context, snap)
			if err != nil {
				return err
			}
			png, err := scoringservice.GenerateRunningTotalsChart(snap, res.Scoreboard, scoringservice.DefaultChartPalette)
			if err != nil {
				return err
			}
			if err := os.WriteFile(c.String("out"), png, 0o644); err != nil {
				return fmt.Errorf("failed to write chart: %w", err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", c.String("out"), len(png))
			return nil
		},
	}
}

// storedService connects to the configured database.
func storedService(c *cli.Context) (*scoringservice.ScoringService, *bundb.DBService, *config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	dbService, err := bundb.NewBunDBService(c.Context, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	svc := scoringservice.NewScoringService(dbService.ScoringDB, parsers.NewFactory(), logger, scoringmetrics.NewNoop(), noop.NewTracerProvider().Tracer("scorer"), dbService.GetDB())
	if cfg.Scoring.RulesFile != "" {
		decls, err := config.LoadRuleSet(cfg.Scoring.RulesFile)
		if err != nil {
			dbService.Close()
			return nil, nil, nil, err
		}
		svc.WithDefaultOptions(decls)
	}
	return svc, dbService, cfg, nil
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import a scorecard file as a stored game",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "game-id", Usage: "id of the stored game"},
			&cli.StringFlag{Name: "name", Usage: "display name of the game"},
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return fmt.Errorf("a file is required")
			}
			data, err := os.ReadFile(name)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}

			svc, dbService, _, err := storedService(c)
			if err != nil {
				return err
			}
			defer dbService.Close()

			res, err := svc.ImportScorecard(c.Context, scoringservice.ImportRequest{
				Filename: name,
				Data:     data,
				GameID:   c.String("game-id"),
				Name:     c.String("name"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Imported game %s (fingerprint %s)\n", res.GameID, res.Fingerprint)
			return nil
		},
	}
}

func rescoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "rescore",
		Usage:     "queue a rescore of a stored game",
		ArgsUsage: "<game-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "at", Usage: `when to rescore, e.g. "now", "in 2 hours", "tomorrow 6pm" or RFC 3339`},
		},
		Action: func(c *cli.Context) error {
			gameID := c.Args().First()
			if gameID == "" {
				return fmt.Errorf("a game id is required")
			}
			at, err := scoringqueue.ParseScheduleTime(c.String("at"), time.Now())
			if err != nil {
				return err
			}

			svc, dbService, cfg, err := storedService(c)
			if err != nil {
				return err
			}
			defer dbService.Close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			queue, err := scoringqueue.NewService(c.Context, dbService.GetDB(), logger, cfg.Postgres.DSN, scoringmetrics.NewNoop(), svc, nil)
			if err != nil {
				return err
			}
			defer queue.Stop(context.WithoutCancel(c.Context))

			jobID, err := queue.EnqueueRescore(c.Context, gameID, at)
			if err != nil {
				return err
			}
			fmt.Printf("Queued rescore job %d for game %s at %s\n", jobID, gameID, at.Format(time.RFC3339))
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an API token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Value: "cli", Usage: "token subject"},
			&cli.BoolFlag{Name: "write", Usage: "allow writes"},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime, defaults to jwt.default_ttl"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			provider, err := scoringauth.NewProvider(cfg.JWT.Secret)
			if err != nil {
				return err
			}
			ttl := c.Duration("ttl")
			if ttl <= 0 {
				ttl = cfg.JWT.DefaultTTL
			}
			token, err := provider.GenerateToken(c.String("subject"), c.Bool("write"), ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
