package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmonsalve/rubrica/internal/agents"
)

var flagInsightSubject string

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Analiza las evaluaciones acumuladas",
	Long: `Sin argumentos muestra las estadísticas por criterio del curso y los
problemas recurrentes. Con --subject analiza la trayectoria de un sujeto.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		analyzer := agents.NewAnalyzer(a.agentProvider, a.log)
		out := cmd.OutOrStdout()

		if flagInsightSubject != "" {
			history, err := a.store.SubjectHistory(cmd.Context(), flagInsightSubject)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				return fmt.Errorf("sin evaluaciones para el sujeto %q", flagInsightSubject)
			}

			if p, ok := agents.Progress(history); ok {
				fmt.Fprintf(out, "Trayectoria de %s: %.1f → %.1f (%s), promedio %.2f\n\n",
					p.SubjectName, p.FirstGrade, p.LatestGrade, p.Trend, p.AverageGrade)
			}
			printInsights(cmd, analyzer.AnalyzeTrends(cmd.Context(), history))
			return nil
		}

		evals, err := a.store.ListEvaluations(cmd.Context(), 0)
		if err != nil {
			return err
		}
		if len(evals) == 0 {
			return fmt.Errorf("sin evaluaciones registradas")
		}

		fmt.Fprintln(out, titleStyle.Render("Estadísticas por criterio"))
		for _, st := range agents.CriterionStats(evals) {
			fmt.Fprintf(out, "  %-55s promedio %5.1f  (mín %d, máx %d, n=%d)\n",
				st.Name, st.Mean, st.Min, st.Max, st.Count)
		}
		fmt.Fprintln(out)
		printInsights(cmd, analyzer.FindCommonIssues(cmd.Context(), evals))
		return nil
	},
}

func printInsights(cmd *cobra.Command, insights []agents.Insight) {
	out := cmd.OutOrStdout()
	if len(insights) == 0 {
		fmt.Fprintln(out, dimStyle.Render("Sin observaciones del modelo."))
		return
	}

	fmt.Fprintln(out, titleStyle.Render("Observaciones"))
	for _, in := range insights {
		fmt.Fprintf(out, "  - %s", in.Title)
		if in.Severity != "" {
			fmt.Fprintf(out, " %s", dimStyle.Render(fmt.Sprintf("[%s]", in.Severity)))
		}
		fmt.Fprintln(out)
		if in.Description != "" {
			fmt.Fprintf(out, "    %s\n", in.Description)
		}
	}
}

func init() {
	insightsCmd.Flags().StringVar(&flagInsightSubject, "subject", "",
		"analizar la trayectoria de este sujeto")
	rootCmd.AddCommand(insightsCmd)
}
