package main

import (
	"context"
	"fmt"
	"io"

	"animal-registry/internal/adapters/storage/file"
	"animal-registry/internal/domain/animals"
	"animal-registry/internal/platform/config"
	"animal-registry/internal/platform/logger"

	"github.com/spf13/cobra"
)

// globalOpts son los flags persistentes compartidos por todos los subcomandos.
type globalOpts struct {
	configFile string
	delimiter  string
	verbose    bool

	// resueltos en PersistentPreRunE
	delim rune
	log   logger.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}

	root := &cobra.Command{
		Use:           "registryctl",
		Short:         "Herramientas de línea de comando para el registro de animales",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.resolve(cmd.ErrOrStderr(), cmd.Flags().Changed("delimiter"))
		},
	}

	root.PersistentFlags().StringVarP(&g.configFile, "config", "c", "", "archivo de config YAML (opcional)")
	root.PersistentFlags().StringVarP(&g.delimiter, "delimiter", "d", "", `separador de los archivos delimitados (default ";", "\t" para tab)`)
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "logs de debug en stderr")

	root.AddCommand(newReportCmd(g), newConvertCmd(g), newInspectCmd(g))
	return root
}

func (g *globalOpts) resolve(stderr io.Writer, delimiterFlag bool) error {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return err
	}

	raw := cfg.Delimiter
	if delimiterFlag {
		raw = g.delimiter
	}
	g.delim, err = animals.ParseDelimiter(raw)
	if err != nil {
		return err
	}

	level := logger.Warn
	if g.verbose {
		level = logger.Debug
	}
	g.log = logger.New(logger.Options{
		Level:  level,
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "registryctl",
		Output: stderr,
	})
	return nil
}

// sources indica de dónde se arma el registro en memoria.
type sources struct {
	animals  string // CSV de animales
	vaccines string // CSV de vacunas (requiere animals o snapshot)
	snapshot string // binario
}

func (s *sources) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.animals, "animals", "", "archivo delimitado de animales")
	cmd.Flags().StringVar(&s.vaccines, "vaccines", "", "archivo delimitado de vacunas")
	cmd.Flags().StringVar(&s.snapshot, "snapshot", "", "archivo binario del registro")
}

// load arma el registro: snapshot primero (reemplaza), después animales
// (agrega) y por último vacunas.
func (s *sources) load(ctx context.Context, g *globalOpts, svc *animals.Service, gw animals.Gateway) error {
	if s.snapshot == "" && s.animals == "" {
		return fmt.Errorf("%w: --snapshot or --animals required", animals.ErrInvalidInput)
	}
	if s.snapshot != "" {
		if err := svc.LoadFromBinary(ctx, s.snapshot, gw); err != nil {
			return describe(s.snapshot, err)
		}
	}
	if s.animals != "" {
		res, err := svc.LoadAnimalsFromDelimitedFile(ctx, s.animals, g.delim, gw)
		if err != nil {
			return describe(s.animals, err)
		}
		for _, sk := range res.Skipped {
			g.log.Warn("skipped row", map[string]any{"file": s.animals, "line": sk.Line, "err": sk.Err})
		}
	}
	if s.vaccines != "" {
		res, err := svc.LoadVaccinesFromDelimitedFile(ctx, s.vaccines, g.delim, gw)
		if err != nil {
			return describe(s.vaccines, err)
		}
		for _, sk := range res.Skipped {
			g.log.Warn("skipped row", map[string]any{"file": s.vaccines, "line": sk.Line, "err": sk.Err})
		}
	}
	return nil
}

// describe deja un mensaje legible para los casos comunes.
func describe(path string, err error) error {
	if file.IsNotExist(err) {
		return fmt.Errorf("%s: file does not exist", path)
	}
	return fmt.Errorf("%s: %w", path, err)
}

// cliGateway no restringe paths: el usuario del CLI ya tiene acceso al disco.
func cliGateway() (animals.Gateway, error) {
	return file.NewGateway("")
}
