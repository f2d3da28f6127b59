package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/Dosada05/lobby-royale/brackets"
	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	var (
		teams     int
		perLobby  int
		advancers int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the round structure for a bracket",
		Long: `Compute the ideal bracket size, the number of byes and the sequence of
rounds for the given team count and lobby configuration. Nothing is written.`,
		Example: "  lobby-royale plan --teams 20 --per-lobby 4 --advancers 2",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := brackets.NewPlan(teams, perLobby, advancers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}

			fmt.Fprintf(out, "Teams: %d\nIdeal size: %d\nByes: %d\n\n", plan.TotalTeams, plan.IdealSize, plan.ByeCount)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROUND\tNAME\tLOBBIES\tTEAMS")
			for _, r := range plan.Rounds {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", r.RoundNumber, r.Name, r.LobbyCount, r.TeamsInRound)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&teams, "teams", "n", 0, "number of registered teams")
	cmd.Flags().IntVar(&perLobby, "per-lobby", 4, "teams per lobby")
	cmd.Flags().IntVar(&advancers, "advancers", 2, "advancers per lobby")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	_ = cmd.MarkFlagRequired("teams")

	return cmd
}
