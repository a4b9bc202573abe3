package animals

import (
	"context"

	"github.com/google/uuid"
)

// Gateway es el único que toca el medio de almacenamiento.
// Los adapters garantizan cerrar sus handles en todos los caminos de salida.
//
// Errores: ErrIO si el medio falla; ReadBlob devuelve ErrDeserialization
// cuando el contenido no calza con v.
type Gateway interface {
	ReadLines(ctx context.Context, path string) ([]string, error)
	WriteLines(ctx context.Context, path string, lines []string) error
	WriteBlob(ctx context.Context, path string, v any) error
	ReadBlob(ctx context.Context, path string, v any) error
}

// OwnerResolver resuelve username -> id de dueño sin importar el paquete owners.
type OwnerResolver interface {
	OwnerIDByUsername(ctx context.Context, username string) (uuid.UUID, error)
}
