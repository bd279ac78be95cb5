package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// actionCmd builds a command that submits one action for the saved player
func actionCmd(use, kind, short string, args cobra.PositionalArgs, payload func(args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			body, err := payload(args)
			if err != nil {
				return err
			}

			result, err := client.Act(playerID, kind, body)
			if err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}
}

func noPayload([]string) (any, error) {
	return nil, nil
}

func newStartCmd() *cobra.Command {
	return actionCmd("start", "startRound", "Start a round (the next player in turn draws)", cobra.NoArgs, noPayload)
}

func newEndCmd() *cobra.Command {
	return actionCmd("end", "endRound", "End the current round", cobra.NoArgs, noPayload)
}

func newClearCmd() *cobra.Command {
	return actionCmd("clear", "clear", "Clear the board (drawer only)", cobra.NoArgs, noPayload)
}

func newGuessCmd() *cobra.Command {
	return actionCmd("guess <text>", "guess", "Guess the word", cobra.MinimumNArgs(1), func(args []string) (any, error) {
		return map[string]string{"text": strings.Join(args, " ")}, nil
	})
}

func newDrawCmd() *cobra.Command {
	var from, to string

	cmd := actionCmd("draw", "draw", "Draw one stroke segment (drawer only)", cobra.NoArgs, func([]string) (any, error) {
		start, err := parsePoint(from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
		end, err := parsePoint(to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
		return map[string]any{"from": start, "to": end}, nil
	})

	cmd.Flags().StringVar(&from, "from", "", "Start point as x,y")
	cmd.Flags().StringVar(&to, "to", "", "End point as x,y")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// parsePoint reads "x,y" into a point payload
func parsePoint(s string) (map[string]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected x,y but got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, err
	}
	return map[string]float64{"x": x, "y": y}, nil
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished rounds, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result History
			if err := client.Get(fmt.Sprintf("/api/v1/history?limit=%d", limit), &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of rounds to show")

	return cmd
}
