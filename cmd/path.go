package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmonsalve/rubrica/internal/agents"
)

var flagWithAdvice bool

var pathCmd = &cobra.Command{
	Use:   "path <sujeto>",
	Short: "Arma un plan de mejora a partir del historial de evaluaciones",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, flagWithAdvice)
		if err != nil {
			return err
		}
		defer a.Close()

		history, err := a.store.SubjectHistory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(history) == 0 {
			return fmt.Errorf("sin evaluaciones para el sujeto %q", args[0])
		}
		latest := history[len(history)-1]

		out := cmd.OutOrStdout()
		fmt.Fprint(out, renderLearningPath(agents.BuildLearningPath(history)))

		recs := agents.Recommend(latest)
		if flagWithAdvice {
			recommender := agents.NewRecommender(a.agentProvider, a.log)
			recs = recommender.Personalize(cmd.Context(), latest)
		}

		if len(recs) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, titleStyle.Render("Recomendaciones"))
			for _, rec := range recs {
				fmt.Fprintf(out, "  %s %s\n", rec.Title,
					dimStyle.Render(fmt.Sprintf("(prioridad %s, %s)", rec.Priority, rec.Effort)))
				for _, step := range rec.Steps {
					fmt.Fprintf(out, "    - %s\n", step)
				}
				for _, r := range rec.Resources {
					fmt.Fprintf(out, "    %s\n", dimStyle.Render(r))
				}
			}
		}
		return nil
	},
}

func init() {
	pathCmd.Flags().BoolVar(&flagWithAdvice, "advice", false,
		"enriquecer los pasos de cada recomendación con el modelo")
	rootCmd.AddCommand(pathCmd)
}
