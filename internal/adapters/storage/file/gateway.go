package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"animal-registry/internal/domain/animals"
	"animal-registry/internal/platform/blobcodec"
)

// maxLineBytes sube el límite de bufio.Scanner (64KB por defecto).
const maxLineBytes = 1 << 20

// Gateway implementa animals.Gateway sobre el filesystem local.
//
// Con root != "" todos los paths son relativos a root y no pueden salir de él
// (la API HTTP recibe paths del cliente). Con root == "" se usan tal cual (CLI).
type Gateway struct {
	root string
}

var _ animals.Gateway = (*Gateway)(nil)

func NewGateway(root string) (*Gateway, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return &Gateway{}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	return &Gateway{root: abs}, nil
}

func (g *Gateway) Root() string { return g.root }

func (g *Gateway) ReadLines(ctx context.Context, path string) ([]string, error) {
	full, err := g.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", animals.ErrIO, err)
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lines := make([]string, 0)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", animals.ErrIO, path, err)
	}
	return lines, nil
}

func (g *Gateway) WriteLines(ctx context.Context, path string, lines []string) error {
	return g.writeFile(ctx, path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, l := range lines {
			if _, err := bw.WriteString(l); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}

func (g *Gateway) WriteBlob(ctx context.Context, path string, v any) error {
	return g.writeFile(ctx, path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		if err := blobcodec.Write(bw, v); err != nil {
			return err
		}
		return bw.Flush()
	})
}

func (g *Gateway) ReadBlob(ctx context.Context, path string, v any) error {
	full, err := g.resolve(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}

	f, err := os.Open(full)
	if err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	defer f.Close()

	if err := blobcodec.Read(bufio.NewReader(f), v); err != nil {
		return fmt.Errorf("%w: %s: %v", animals.ErrDeserialization, path, err)
	}
	return nil
}

// writeFile sobrescribe el archivo completo: escribe a un tmp y hace rename.
// Si algo falla el archivo anterior queda intacto y el tmp se borra.
func (g *Gateway) writeFile(ctx context.Context, path string, fill func(io.Writer) error) (err error) {
	full, err := g.resolve(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = fill(tmp); err != nil {
		return fmt.Errorf("%w: write %s: %w", animals.ErrIO, path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", animals.ErrIO, path, err)
	}
	if err = os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("%w: rename %s: %w", animals.ErrIO, path, err)
	}
	return nil
}

func (g *Gateway) resolve(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: empty path", animals.ErrInvalidInput)
	}
	if g.root == "" {
		return filepath.Clean(path), nil
	}

	rel := filepath.Clean(filepath.FromSlash(path))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: path %q escapes data dir", animals.ErrInvalidInput, path)
	}
	return filepath.Join(g.root, rel), nil
}

// IsNotExist ayuda a los callers (CLI) a distinguir "no existe" de otros ErrIO.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
