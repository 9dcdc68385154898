package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmonsalve/rubrica/internal/evaluator"
)

var (
	flagSubjectID   string
	flagSubjectName string
	flagPartner     string
	flagNoSave      bool
	flagAdvanced    bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <repositorio>",
	Short: "Evalúa un repositorio contra la rúbrica",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		subject := evaluator.Subject{
			ID:         flagSubjectID,
			Name:       flagSubjectName,
			Partner:    flagPartner,
			Repository: args[0],
		}
		if subject.Name == "" {
			subject.Name = args[0]
		}
		if subject.ID == "" {
			subject.ID = subject.Name
		}

		svc := evaluator.NewService(a.provider, a.rubric, a.fetcher,
			evaluator.Options{Advanced: flagAdvanced}, a.log)
		ev, err := svc.Evaluate(cmd.Context(), subject)
		if err != nil {
			return err
		}

		if !flagNoSave {
			if err := a.store.SaveEvaluation(cmd.Context(), ev); err != nil {
				return fmt.Errorf("guardando evaluación: %w", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderEvaluation(ev))
		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&flagSubjectID, "id", "", "identificador del sujeto evaluado")
	evaluateCmd.Flags().StringVar(&flagSubjectName, "name", "", "nombre del estudiante")
	evaluateCmd.Flags().StringVar(&flagPartner, "partner", "", "nombre de la pareja de trabajo")
	evaluateCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "no persistir el resultado")
	evaluateCmd.Flags().BoolVar(&flagAdvanced, "advanced", false,
		"evaluación en cadena (planificar, razonar, evaluar, validar) por criterio")
	rootCmd.AddCommand(evaluateCmd)
}
