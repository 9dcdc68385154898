package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmonsalve/rubrica/internal/batch"
	"github.com/vmonsalve/rubrica/internal/evaluator"
)

var flagConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <roster.yml>",
	Short: "Evalúa todos los sujetos de un roster",
	Long: `Evalúa cada sujeto del roster y persiste los resultados. Con
--concurrency 1 el roster se procesa estrictamente en orden; valores
mayores acotan las evaluaciones simultáneas.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subjects, err := batch.LoadRoster(args[0])
		if err != nil {
			return err
		}

		a, err := buildApp(cmd, true)
		if err != nil {
			return err
		}
		defer a.Close()

		concurrency := flagConcurrency
		if concurrency == 0 {
			concurrency = a.cfg.Concurrency
		}

		svc := evaluator.NewService(a.provider, a.rubric, a.fetcher, evaluator.Options{}, a.log)
		runner := batch.NewRunner(svc, a.log)

		res, err := runner.Run(cmd.Context(), subjects, concurrency)
		if err != nil {
			return err
		}

		for _, ev := range res.Evaluations {
			if err := a.store.SaveEvaluation(cmd.Context(), ev); err != nil {
				return fmt.Errorf("guardando evaluación de %s: %w", ev.SubjectName, err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderBatchResult(res))
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0,
		"evaluaciones simultáneas (por defecto $RUBRICA_CONCURRENCY o 3)")
	rootCmd.AddCommand(batchCmd)
}
