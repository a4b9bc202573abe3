package memory

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"animal-registry/internal/domain/animals"
	"animal-registry/internal/platform/blobcodec"
)

// gateway guarda cada "archivo" como bytes en un map. Sirve para dev y tests;
// las líneas y los blobs pasan por el mismo formato que el gateway de disco.
type gateway struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// Gateway amplía animals.Gateway con helpers para sembrar/inspeccionar contenido.
type Gateway interface {
	animals.Gateway
	Put(path string, content []byte)
	Get(path string) ([]byte, bool)
}

func NewGateway() Gateway {
	return &gateway{files: make(map[string][]byte)}
}

func (g *gateway) Put(path string, content []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.files[path] = bytes.Clone(content)
}

func (g *gateway) Get(path string) ([]byte, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, ok := g.files[path]
	return bytes.Clone(b), ok
}

func (g *gateway) ReadLines(ctx context.Context, path string) ([]string, error) {
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

func (g *gateway) WriteLines(ctx context.Context, path string, lines []string) error {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return g.write(ctx, path, buf.Bytes())
}

func (g *gateway) WriteBlob(ctx context.Context, path string, v any) error {
	b, err := blobcodec.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	return g.write(ctx, path, b)
}

func (g *gateway) ReadBlob(ctx context.Context, path string, v any) error {
	b, err := g.read(ctx, path)
	if err != nil {
		return err
	}
	if err := blobcodec.Decode(b, v); err != nil {
		return fmt.Errorf("%w: %s: %v", animals.ErrDeserialization, path, err)
	}
	return nil
}

func (g *gateway) read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	b, ok := g.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: open %s: %w", animals.ErrIO, path, os.ErrNotExist)
	}
	return b, nil
}

func (g *gateway) write(ctx context.Context, path string, b []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", animals.ErrIO, err)
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", animals.ErrInvalidInput)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.files[path] = b
	return nil
}
