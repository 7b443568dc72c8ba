// Command tennisctl runs tennis imports and diagnostics from the shell.
//
// Usage:
//
//	tennisctl import
//	tennisctl import-july-2025
//	tennisctl import-range --from 2025-06-30 --to 2025-07-14
//	tennisctl quota
//	tennisctl test-connection
//	tennisctl debug
//	tennisctl recent --limit 20
//
// With QUOTA_BACKEND=memory each invocation starts with a fresh budget;
// use the redis backend to share the budget with the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sportrate/tennis-ingestion/internal/app"
	"sportrate/tennis-ingestion/internal/apperr"
	"sportrate/tennis-ingestion/internal/config"
	"sportrate/tennis-ingestion/internal/models"
)

const dateLayout = "2006-01-02"

func main() {
	app.SetupLogger()

	root := &cobra.Command{
		Use:           "tennisctl",
		Short:         "Tennis match ingestion CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(importCmd())
	root.AddCommand(importJulyCmd())
	root.AddCommand(importRangeCmd())
	root.AddCommand(quotaCmd())
	root.AddCommand(testConnectionCmd())
	root.AddCommand(debugCmd())
	root.AddCommand(recentCmd())

	if err := root.Execute(); err != nil {
		log.Error().
			Err(err).
			Str("kind", string(apperr.KindOf(err))).
			Strs("hints", apperr.Hints(err)).
			Msg("Command failed")
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import the latest official ATP matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Importer.ImportATPMatches(ctx)
			})
		},
	}
}

func importJulyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-july-2025",
		Short: "Import official ATP matches played in July 2025",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Importer.ImportATPJuly2025(ctx)
			})
		},
	}
}

func importRangeCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "import-range",
		Short: "Import official ATP matches that started in [from, to)",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(dateLayout, from)
			if err != nil {
				return apperr.Wrap(err, apperr.KindInvalidInput, "invalid --from date")
			}
			end, err := time.Parse(dateLayout, to)
			if err != nil {
				return apperr.Wrap(err, apperr.KindInvalidInput, "invalid --to date")
			}
			return run(func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Importer.ImportRange(ctx, start, end)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day, exclusive (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func quotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the API call budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Importer.QuotaStatus(ctx)
			})
		},
	}
}

func testConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Check that the provider answers (costs one call)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Importer.TestConnection(ctx)
			})
		},
	}
}

func debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Fetch a small page and show classifier verdicts without storing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app.App) (interface{}, error) {
				return a.Importer.DebugResponse(ctx)
			})
		},
	}
}

// storedMatch is the CLI view of a stored row
type storedMatch struct {
	ID         int64           `json:"id"`
	APIMatchID *int64          `json:"api_match_id,omitempty"`
	HomeTeam   string          `json:"home_team"`
	AwayTeam   string          `json:"away_team"`
	League     string          `json:"league,omitempty"`
	MatchDate  time.Time       `json:"match_date"`
	Status     string          `json:"status"`
	HomeScore  *int32          `json:"home_score,omitempty"`
	AwayScore  *int32          `json:"away_score,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
}

func recentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently played stored tennis matches (no API call)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return apperr.Newf(apperr.KindInvalidInput, "--limit must be positive, got %d", limit)
			}
			return run(func(ctx context.Context, a *app.App) (interface{}, error) {
				rows, err := a.DB.Matches.ListRecent(ctx, models.SportTennis, limit)
				if err != nil {
					return nil, err
				}
				out := make([]storedMatch, 0, len(rows))
				for _, m := range rows {
					sm := storedMatch{
						ID:        m.ID,
						HomeTeam:  m.HomeTeam,
						AwayTeam:  m.AwayTeam,
						League:    m.League.String,
						MatchDate: m.MatchDate,
						Status:    m.Status,
						Details:   m.Details,
					}
					if m.APIMatchID.Valid {
						sm.APIMatchID = &m.APIMatchID.Int64
					}
					if m.HomeScore.Valid {
						sm.HomeScore = &m.HomeScore.Int32
					}
					if m.AwayScore.Valid {
						sm.AwayScore = &m.AwayScore.Int32
					}
					out = append(out, sm)
				}
				return out, nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of matches to show")
	return cmd
}

// run loads config, wires dependencies and prints the result as JSON
func run(fn func(ctx context.Context, a *app.App) (interface{}, error)) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := fn(ctx, a)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
