package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"animal-registry/internal/domain/animals"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type inspectVaccine struct {
	Brand    string `json:"brand" yaml:"brand"`
	VolumeMl int    `json:"volume_ml" yaml:"volume_ml"`
	Applied  string `json:"applied" yaml:"applied"`
	Next     string `json:"next" yaml:"next"`
	Expired  bool   `json:"expired" yaml:"expired"`
}

type inspectAnimal struct {
	ID       string           `json:"id" yaml:"id"`
	Name     string           `json:"name" yaml:"name"`
	Age      int              `json:"age" yaml:"age"`
	Owners   []string         `json:"owners" yaml:"owners"`
	Vaccines []inspectVaccine `json:"vaccines" yaml:"vaccines"`
}

func newInspectCmd(g *globalOpts) *cobra.Command {
	var (
		src    sources
		output string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Muestra el contenido del registro",
		Long: `Ejemplos:
  registryctl inspect --snapshot registry.bin
  registryctl inspect --animals animals.csv --vaccines vaccines.csv -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := cliGateway()
			if err != nil {
				return err
			}
			svc := animals.NewService(g.log)
			if err := src.load(cmd.Context(), g, svc, gw); err != nil {
				return err
			}

			items := toInspect(svc.Animals(), time.Now())
			return writeInspect(cmd.OutOrStdout(), output, items)
		},
	}

	src.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "formato: text | json | yaml")
	return cmd
}

func toInspect(list []animals.Animal, now time.Time) []inspectAnimal {
	out := make([]inspectAnimal, 0, len(list))
	for i := range list {
		a := &list[i]
		item := inspectAnimal{
			ID:       a.ID().String(),
			Name:     a.Name(),
			Age:      a.Age(),
			Owners:   make([]string, 0),
			Vaccines: make([]inspectVaccine, 0),
		}
		for _, id := range a.OwnerIDs() {
			item.Owners = append(item.Owners, id.String())
		}
		for _, v := range a.Vaccines() {
			item.Vaccines = append(item.Vaccines, inspectVaccine{
				Brand:    v.Brand(),
				VolumeMl: v.VolumeMl(),
				Applied:  v.ApplicationDate().Format(animals.DateLayout),
				Next:     v.NextApplicationDate().Format(animals.DateLayout),
				Expired:  v.IsExpiredAt(now),
			})
		}
		out = append(out, item)
	}
	return out
}

func writeInspect(w io.Writer, format string, items []inspectAnimal) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		for _, a := range items {
			fmt.Fprintf(w, "%s  %s (%d)  owners=%d vaccines=%d\n", a.ID, a.Name, a.Age, len(a.Owners), len(a.Vaccines))
			for _, v := range a.Vaccines {
				mark := ""
				if v.Expired {
					mark = "  EXPIRED"
				}
				fmt.Fprintf(w, "    %s %d ml  applied %s  next %s%s\n", v.Brand, v.VolumeMl, v.Applied, v.Next, mark)
			}
		}
		fmt.Fprintf(w, "%d animals\n", len(items))
		return nil
	default:
		return fmt.Errorf("%w: unknown output %q", animals.ErrInvalidInput, format)
	}
}
