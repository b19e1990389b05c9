// Package main provides slipctl, the operator CLI for the slip tracker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/slip-tracker/internal/config"
	"github.com/yourusername/slip-tracker/internal/database"
	applog "github.com/yourusername/slip-tracker/internal/logger"
	"github.com/yourusername/slip-tracker/internal/models"
	"github.com/yourusername/slip-tracker/internal/pipeline"
	"github.com/yourusername/slip-tracker/internal/repository"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:   "slipctl",
		Short: "Parse betting slips and inspect tracked bets",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for CLI output")

	root.AddCommand(parseCmd())
	root.AddCommand(storeCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(listCmd())
	root.AddCommand(removeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readSlipText reads OCR text from the file argument or stdin.
func readSlipText(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Run OCR text through the ingest pipeline and print the parsed slip",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSlipText(args)
			if err != nil {
				return err
			}

			p, _, err := newPipeline()
			if err != nil {
				return err
			}

			slip, err := p.IngestSlip(cmd.Context(), models.RawText{Text: text})
			if err != nil && !isWarning(err) {
				return err
			}
			if isWarning(err) {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
			return printJSON(slip)
		},
	}
}

func storeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "store [file]",
		Short: "Parse a slip and register it for settlement tracking",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSlipText(args)
			if err != nil {
				return err
			}

			p, cfg, err := newPipeline()
			if err != nil {
				return err
			}

			slip, err := p.IngestSlip(cmd.Context(), models.RawText{Text: text})
			if err != nil && !isWarning(err) {
				return err
			}

			db, slipRepo, betRepo, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := slipRepo.Create(cmd.Context(), &slip); err != nil {
				return err
			}

			now := time.Now().UTC()
			bet := &models.TrackedBet{
				ID:        uuid.New(),
				SlipID:    slip.SlipID,
				Slip:      slip,
				Stake:     slip.EffectiveStake(cfg.Matcher.StakeSource),
				Status:    models.SettlementPending,
				CreatedAt: now,
				UpdatedAt: now,
			}
			for i := range slip.Legs {
				bet.Bindings = append(bet.Bindings, models.LegEventBinding{
					LegID:       slip.Legs[i].LegID,
					MatchStatus: models.MatchStatusUnmatched,
					Result:      models.LegResultPending,
				})
			}
			if err := betRepo.Create(cmd.Context(), bet); err != nil {
				return err
			}

			fmt.Printf("tracked bet %s created for slip %s (%d legs)\n", bet.ID, slip.SlipID, len(slip.Legs))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <bet-id>",
		Short: "Print a tracked bet with its bindings and settlement state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid bet id: %w", err)
			}

			db, _, betRepo, err := openDatabase(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close()

			bet, err := betRepo.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(bet)
		},
	}
}

func listCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked bets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, betRepo, err := openDatabase(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close()

			bets, err := betRepo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, bet := range bets {
				settled := ""
				if bet.SettledAt != nil {
					settled = bet.SettledAt.Format(time.RFC3339)
				}
				fmt.Printf("%s  %-12s  legs=%d  stake=%s  %s\n",
					bet.ID, bet.Status, len(bet.Slip.Legs), bet.Stake.StringFixed(2), settled)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum bets to list")
	return cmd
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <bet-id>",
		Short: "Stop tracking a bet and delete its slip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid bet id: %w", err)
			}

			db, slipRepo, betRepo, err := openDatabase(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer db.Close()

			bet, err := betRepo.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := betRepo.Delete(cmd.Context(), id); err != nil {
				return err
			}
			if err := slipRepo.Delete(cmd.Context(), bet.SlipID); err != nil && !errors.Is(err, models.ErrNotFound) {
				return err
			}

			fmt.Printf("tracked bet %s removed\n", id)
			return nil
		},
	}
}

// newPipeline builds the ingest pipeline with the operator's configured stage
// tuning. The loaded config is returned for commands that need more of it.
func newPipeline() (*pipeline.Pipeline, *config.Config, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return nil, nil, err
	}
	log := applog.NewLogger(logLevel, "development")
	p := pipeline.NewWithConfig(pipeline.Config{
		MinRouteScore:    cfg.Ingest.MinRouteScore,
		MinLegConfidence: cfg.Ingest.MinLegConfidence,
		SegmentLookahead: cfg.Ingest.SegmentLookahead,
	}, log)
	return p, cfg, nil
}

// openDatabase connects using the given config, loading it first when the
// caller has not already.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, repository.SlipRepository, repository.TrackedBetRepository, error) {
	if cfg == nil {
		var err error
		cfg, err = config.LoadWithDefaults(configPath)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	db, err := database.Initialize(initCtx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return db, repository.NewPostgresSlipRepository(db), repository.NewPostgresTrackedBetRepository(db), nil
}

// isWarning reports whether the ingest error still produced a usable slip.
func isWarning(err error) bool {
	return errors.Is(err, models.ErrAssemblyInconsistent)
}
