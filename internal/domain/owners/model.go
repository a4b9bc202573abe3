package owners

import (
	"time"

	"github.com/google/uuid"
)

// Owner es el dueño al que apuntan los ownerIDs de cada animal.
// Username es único sin distinguir mayúsculas.
type Owner struct {
	ID       uuid.UUID
	Username string
	Name     string

	CreatedAt time.Time
}
