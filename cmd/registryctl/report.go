package main

import (
	"fmt"
	"strings"
	"time"

	"animal-registry/internal/domain/animals"

	"github.com/spf13/cobra"
)

func newReportCmd(g *globalOpts) *cobra.Command {
	var (
		src sources
		at  string
		out string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Lista las vacunas vencidas a una fecha",
		Long: `Arma el registro desde un snapshot y/o archivos delimitados y lista
las vacunas vencidas, una por línea:

  <name> has <brand> of <volumeMl> ml expired on <nextApplicationDate>

Ejemplos:
  registryctl report --animals animals.csv --vaccines vaccines.csv --at 2025-06-01
  registryctl report --snapshot registry.bin --out expired.txt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := time.Now()
			if strings.TrimSpace(at) != "" {
				t, err := time.Parse(animals.DateLayout, strings.TrimSpace(at))
				if err != nil {
					return fmt.Errorf("--at: expected YYYY-MM-DD, got %q", at)
				}
				ref = t
			}

			gw, err := cliGateway()
			if err != nil {
				return err
			}
			svc := animals.NewService(g.log)
			if err := src.load(cmd.Context(), g, svc, gw); err != nil {
				return err
			}

			var lines []string
			if out != "" {
				lines, err = svc.WriteExpiryReport(cmd.Context(), out, ref, gw)
				if err != nil {
					return describe(out, err)
				}
			} else {
				lines = svc.GenerateExpiryReport(ref)
			}

			w := cmd.OutOrStdout()
			for _, l := range lines {
				fmt.Fprintln(w, l)
			}
			return nil
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVar(&at, "at", "", "fecha de referencia YYYY-MM-DD (default hoy)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "además escribe el reporte en este archivo")
	return cmd
}
