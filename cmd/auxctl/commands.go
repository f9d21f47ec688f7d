package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureDB(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newTournamentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tournaments",
		Short: "List tournaments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.tournaments()
			if err != nil {
				return err
			}
			tournaments, err := svc.ListTournaments(cmd.Context())
			if err != nil {
				return err
			}
			if len(tournaments) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tournaments.")
				return nil
			}

			rows := make([][]string, 0, len(tournaments))
			for _, t := range tournaments {
				status := "running"
				if t.IsComplete() {
					status = "complete"
				}
				rows = append(rows, []string{
					t.FormattedCode(),
					t.Name,
					strconv.Itoa(t.Year),
					t.RegistrationDeadline.UTC().Format(timeLayout),
					status,
					t.ID.String(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Code", "Name", "Year", "Registration closes", "Status", "ID"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <tournament-id>",
		Short: "Show a tournament's bracket and vote counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.tournaments()
			if err != nil {
				return err
			}
			data, err := svc.GetTournamentData(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", data.Tournament.Name, data.Tournament.FormattedCode())
			fmt.Fprintf(out, "Phase: %s\n", data.Phase)
			fmt.Fprintf(out, "Songs: %d\n", len(data.Songs))
			fmt.Fprintf(out, "Participants: %d\n", len(data.Participants))
			if len(data.Participants) > 0 {
				rows := make([][]string, 0, len(data.Participants))
				for _, p := range data.Participants {
					rows = append(rows, []string{p.Username, p.RegisteredAt.UTC().Format(timeLayout)})
				}
				fmt.Fprintln(out, renderTable([]string{"Participant", "Joined"}, rows, nil))
			}
			if data.Champion != nil {
				fmt.Fprintf(out, "Champion: %s by %s\n", data.Champion.Title, data.Champion.Artist)
			}

			if len(data.Rounds) == 0 {
				rows := make([][]string, 0, len(data.Songs))
				for _, s := range data.Songs {
					rows = append(rows, []string{s.Title, s.Artist, string(s.Source), s.CreatedAt.UTC().Format(timeLayout)})
				}
				fmt.Fprintln(out, renderTable([]string{"Title", "Artist", "Source", "Submitted"}, rows, nil))
				return nil
			}

			roundNumbers := make(map[uuid.UUID]bracket.Round, len(data.Rounds))
			for _, r := range data.Rounds {
				roundNumbers[r.ID] = r
			}

			rows := make([][]string, 0, len(data.Matchups))
			for _, m := range data.Matchups {
				round := roundNumbers[m.RoundID]
				tally := data.Tallies[m.ID]
				rows = append(rows, []string{
					fmt.Sprintf("%d %s", round.Number, round.Name),
					string(round.Status),
					strconv.Itoa(m.Position),
					songLabel(data.SongMap, m.Song1ID),
					voteCount(tally, m.Song1ID, m.IsBye),
					songLabel(data.SongMap, m.Song2ID),
					voteCount(tally, m.Song2ID, m.IsBye),
					songLabel(data.SongMap, m.WinnerSongID),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Round", "Status", "#", "Song 1", "Votes", "Song 2", "Votes", "Winner"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func songLabel(songs map[uuid.UUID]bracket.Song, id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	if s, ok := songs[*id]; ok {
		return fmt.Sprintf("%s (%s)", s.Title, s.Artist)
	}
	return id.String()
}

func voteCount(tally bracket.Tally, id *uuid.UUID, bye bool) string {
	if id == nil || bye {
		return "-"
	}
	return strconv.Itoa(tally[*id])
}

func newBracketCommand(ctx *commandContext) *cobra.Command {
	var order string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "bracket <tournament-id>",
		Short: "Generate round 1 once registration has closed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tournamentID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid tournament id: %w", err)
			}
			seedOrder, err := service.ParseSeedOrder(order)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}

			svc, err := ctx.brackets()
			if err != nil {
				return err
			}
			data, err := svc.GenerateFirstRound(cmd.Context(), tournamentID, seedOrder, seed)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d matchups (seed %d), voting closes %s\n",
				data.Round.Name, len(data.Matchups), seed, data.Round.VotingDeadline.UTC().Format(timeLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&order, "order", string(service.SeedSubmission), "Seed order: submission or random")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Shuffle seed for random order")
	return cmd
}

func newCloseRoundCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "close-round <round-id>",
		Short: "Close a round and advance its winners",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roundID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid round id: %w", err)
			}
			svc, err := ctx.rounds()
			if err != nil {
				return err
			}
			progression, err := svc.CloseRound(cmd.Context(), roundID)
			if err != nil {
				return err
			}
			printProgression(cmd, progression)
			return nil
		},
	}
}

func newCloseDueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "close-due",
		Short: "Close every open round whose voting deadline has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.rounds()
			if err != nil {
				return err
			}
			progressions, err := svc.CloseDueRounds(cmd.Context())
			for _, p := range progressions {
				printProgression(cmd, p)
			}
			if len(progressions) == 0 && err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No rounds due.")
			}
			return err
		},
	}
}

func printProgression(cmd *cobra.Command, p *service.Progression) {
	out := cmd.OutOrStdout()
	if p.TournamentComplete() {
		fmt.Fprintf(out, "Closed %s. Champion: %s by %s\n", p.Closed.Name, p.Champion.Title, p.Champion.Artist)
		return
	}
	fmt.Fprintf(out, "Closed %s, %d songs advance to %s (%d matchups)\n",
		p.Closed.Name, len(p.Winners), p.Next.Round.Name, len(p.Next.Matchups))
}
