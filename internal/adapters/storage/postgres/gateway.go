package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"animal-registry/internal/domain/animals"
	"animal-registry/internal/platform/blobcodec"
)

// Gateway guarda cada path como una fila de registry_files.
// Escribir = upsert del contenido completo (mismo contrato que sobrescribir un archivo).
type Gateway struct {
	db  *sql.DB
	now func() time.Time
}

var _ animals.Gateway = (*Gateway)(nil)

func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db, now: time.Now}
}

func (g *Gateway) ReadLines(ctx context.Context, path string) ([]string, error) {
	b, err := g.read(ctx, path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

func (g *Gateway) WriteLines(ctx context.Context, path string, lines []string) error {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return g.write(ctx, path, buf.Bytes())
}

func (g *Gateway) WriteBlob(ctx context.Context, path string, v any) error {
	b, err := blobcodec.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	return g.write(ctx, path, b)
}

func (g *Gateway) ReadBlob(ctx context.Context, path string, v any) error {
	b, err := g.read(ctx, path)
	if err != nil {
		return err
	}
	if err := blobcodec.Decode(b, v); err != nil {
		return fmt.Errorf("%w: %s: %v", animals.ErrDeserialization, path, err)
	}
	return nil
}

func (g *Gateway) read(ctx context.Context, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", animals.ErrInvalidInput)
	}

	var content []byte
	err := g.db.QueryRowContext(ctx, `
		SELECT content
		FROM registry_files
		WHERE path = $1
	`, path).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: open %s: %w", animals.ErrIO, path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	return content, nil
}

func (g *Gateway) write(ctx context.Context, path string, content []byte) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%w: empty path", animals.ErrInvalidInput)
	}

	_, err := g.db.ExecContext(ctx, `
		INSERT INTO registry_files (path, content, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE
		SET content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
	`, path, content, g.now())
	if err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	return nil
}
