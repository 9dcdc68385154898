package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmonsalve/rubrica/internal/agents"
)

var planCmd = &cobra.Command{
	Use:   "plan <repositorio>",
	Short: "Planifica la evaluación de un repositorio, criterio por criterio",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.fetcher.Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		planner := agents.NewPlanner(a.agentProvider, a.log)
		plans := planner.PlanAll(cmd.Context(), a.rubric, snap)
		sequence := planner.OptimizeSequence(cmd.Context(), a.rubric, plans)

		fmt.Fprint(cmd.OutOrStdout(), renderPlans(sequence, plans))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
