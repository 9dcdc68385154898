package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Muestra la versión",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rubrica %s\n", Version)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Muestra el uso acumulado del backend LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		requests, in, out, err := a.store.RequestTotals(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Solicitudes al modelo: %d\n", requests)
		fmt.Fprintf(w, "Tokens de entrada:     %d\n", in)
		fmt.Fprintf(w, "Tokens de salida:      %d\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statsCmd)
}
