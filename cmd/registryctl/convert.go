package main

import (
	"fmt"

	"animal-registry/internal/domain/animals"

	"github.com/spf13/cobra"
)

func newConvertCmd(g *globalOpts) *cobra.Command {
	var (
		src        sources
		toSnapshot string
		toAnimals  string
		toVaccines string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convierte entre archivos delimitados y snapshot binario",
		Long: `Ejemplos:
  # CSV -> binario
  registryctl convert --animals animals.csv --vaccines vaccines.csv --to-snapshot registry.bin

  # binario -> CSV (con otro separador)
  registryctl convert --snapshot registry.bin --to-animals out.csv --to-vaccines out-vac.csv -d ,`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if toSnapshot == "" && toAnimals == "" && toVaccines == "" {
				return fmt.Errorf("%w: nothing to write (use --to-snapshot, --to-animals or --to-vaccines)", animals.ErrInvalidInput)
			}

			gw, err := cliGateway()
			if err != nil {
				return err
			}
			svc := animals.NewService(g.log)
			ctx := cmd.Context()
			if err := src.load(ctx, g, svc, gw); err != nil {
				return err
			}

			if toSnapshot != "" {
				if err := svc.SaveToBinary(ctx, toSnapshot, gw); err != nil {
					return describe(toSnapshot, err)
				}
			}
			if toAnimals != "" {
				if err := svc.SaveToDelimitedFile(ctx, toAnimals, g.delim, gw); err != nil {
					return describe(toAnimals, err)
				}
			}
			if toVaccines != "" {
				if err := svc.SaveVaccinesToDelimitedFile(ctx, toVaccines, g.delim, gw); err != nil {
					return describe(toVaccines, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d animals written\n", svc.Len())
			return nil
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVar(&toSnapshot, "to-snapshot", "", "archivo binario de salida")
	cmd.Flags().StringVar(&toAnimals, "to-animals", "", "archivo delimitado de animales de salida")
	cmd.Flags().StringVar(&toVaccines, "to-vaccines", "", "archivo delimitado de vacunas de salida")
	return cmd
}
