package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trivia-race-service/internal/app"
	"trivia-race-service/internal/config"
	"trivia-race-service/internal/domain"
	"trivia-race-service/internal/infra/file"
)

// NewAdminCmd groups the organizer operations that act directly on the shared store.
func NewAdminCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Organizer commands against the configured store",
	}
	cmd.AddCommand(
		newStartRaceCmd(configPath),
		newResetCmd(configPath),
		newRankingCmd(configPath),
		newPlayersCmd(configPath),
		newAuditCmd(configPath),
		newImportBankCmd(configPath),
	)
	return cmd
}

// withService loads config, wires the service and runs fn against it.
func withService(ctx context.Context, configPath string, fn func(*app.RaceService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	service, backend, err := newRaceService(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(service)
}

func newStartRaceCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start-race ORGANIZER",
		Short: "Start (or restart) the race clock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(s *app.RaceService) error {
				state, err := s.StartRace(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "race started by %s at %s\n",
					*state.OrganizerName, state.StartedAt.Time.Format("15:04:05"))
				return nil
			})
		},
	}
}

func newResetCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear all players, the race clock and the answer log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(s *app.RaceService) error {
				if err := s.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "race reset")
				return nil
			})
		},
	}
}

func newRankingCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Print the ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(s *app.RaceService) error {
				return printRanking(cmd.OutOrStdout(), s.GetRanking(cmd.Context(), limit))
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 3, "number of entries to show, 0 for all")
	return cmd
}

func newPlayersCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "Print the registered players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(s *app.RaceService) error {
				return printRoster(cmd.OutOrStdout(), s.GetRoster(cmd.Context()))
			})
		},
	}
}

func newAuditCmd(configPath *string) *cobra.Command {
	var player string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the answer log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), *configPath, func(s *app.RaceService) error {
				return printAudit(cmd.OutOrStdout(), s.GetAudit(cmd.Context(), player))
			})
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "only show answers from this player")
	return cmd
}

// bankSaver is implemented by stores that can persist a question bank.
type bankSaver interface {
	SaveBank(ctx context.Context, bank domain.QuestionBank) error
}

func newImportBankCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import-bank FILE",
		Short: "Load a YAML question bank into the Postgres bank table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			bank, err := file.NewBankLoader(args[0]).LoadBank(ctx, cfg.BankID())
			if err != nil {
				return err
			}
			if err := bank.Validate(); err != nil {
				return err
			}
			if bank.ID != cfg.BankID() {
				return fmt.Errorf("bank id %q does not match race.bankId %q", bank.ID, cfg.BankID())
			}
			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			saver, ok := b.banks.(bankSaver)
			if !ok {
				return fmt.Errorf("%s backend cannot store question banks", cfg.Backend())
			}
			if err := saver.SaveBank(ctx, bank); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported bank %q with %d questions\n", bank.ID, bank.Len())
			return nil
		},
	}
}

func printRanking(w io.Writer, entries []domain.RankingEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tPLAYER\tPOINTS\tCORRECT\tTIME\tPROGRESS")
	for _, e := range entries {
		finish := "-"
		if e.Finished {
			finish = e.FinishTime
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%.0f%%\n", e.Position, e.Player, e.Score, e.CorrectCount, finish, e.Progress*100)
	}
	return tw.Flush()
}

func printRoster(w io.Writer, roster []domain.RosterEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tCORRECT\tPOINTS\tJOINED")
	for _, r := range roster {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", r.Player, r.CorrectCount, r.Score, r.JoinedAt.Format("15:04:05"))
	}
	return tw.Flush()
}

func printAudit(w io.Writer, rows []domain.AuditRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPLAYER\tQUESTION\tSELECTED\tCORRECT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%t\n", r.Time, r.Player, r.QuestionNumber, r.Selected, r.Correct)
	}
	return tw.Flush()
}
