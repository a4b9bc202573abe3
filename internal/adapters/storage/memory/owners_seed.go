package memory

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"animal-registry/internal/domain/owners"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ownerSeedFile es el formato del archivo de dueños:
//
//	owners:
//	  - username: ana
//	    name: Ana Pérez
//	    id: 2b5c...   # opcional, si falta se genera
type ownerSeedFile struct {
	Owners []ownerSeedEntry `yaml:"owners"`
}

type ownerSeedEntry struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
}

func ReadOwnerSeedFile(path string) ([]owners.Owner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open owners seed: %w", err)
	}
	defer f.Close()

	return ReadOwnerSeed(f)
}

func ReadOwnerSeed(r io.Reader) ([]owners.Owner, error) {
	var doc ownerSeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return []owners.Owner{}, nil
		}
		return nil, fmt.Errorf("parse owners seed: %w", err)
	}

	now := time.Now()
	out := make([]owners.Owner, 0, len(doc.Owners))
	for i, e := range doc.Owners {
		username := owners.NormalizeUsername(e.Username)
		if username == "" {
			return nil, fmt.Errorf("owners seed entry %d: username required", i)
		}

		id := uuid.New()
		if raw := strings.TrimSpace(e.ID); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("owners seed entry %d: invalid id %q", i, raw)
			}
			id = parsed
		}

		out = append(out, owners.Owner{
			ID:        id,
			Username:  username,
			Name:      strings.TrimSpace(e.Name),
			CreatedAt: now,
		})
	}
	return out, nil
}
