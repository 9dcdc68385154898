package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmonsalve/rubrica/internal/agents"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Genera alertas de riesgo académico, progreso y similitud",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		histories, err := a.store.Histories(cmd.Context())
		if err != nil {
			return err
		}
		if len(histories) == 0 {
			return fmt.Errorf("sin evaluaciones registradas")
		}

		alerts := agents.GenerateAlerts(histories)

		latest, err := a.store.LatestBySubject(cmd.Context())
		if err != nil {
			return err
		}
		candidates, plagAlerts := agents.FindPlagiarismCandidates(latest)
		alerts = append(alerts, plagAlerts...)

		out := cmd.OutOrStdout()
		fmt.Fprint(out, renderAlerts(alerts))

		if len(candidates) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, titleStyle.Render("Pares con retroalimentación similar"))
			for _, c := range candidates {
				fmt.Fprintf(out, "  %s / %s en %q: similitud %.2f\n",
					c.SubjectA, c.SubjectB, c.Criterion, c.Similarity)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}
