package animals

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// snapshotFormat marca los blobs escritos por SaveToBinary.
const snapshotFormat = "animal-registry/v1"

// registrySnapshot envuelve la lista para que gob no acepte cualquier slice
// de structs con campos parecidos (gob empareja por nombre).
type registrySnapshot struct {
	Format  string
	Animals []animalRecord
}

// animalRecord / vaccineRecord son la forma binaria del registro.
// Campos exportados porque el codec (gob) solo ve esos.
type animalRecord struct {
	ID       uuid.UUID
	Name     string
	Age      int
	Vaccines []vaccineRecord
	OwnerIDs []uuid.UUID
}

type vaccineRecord struct {
	VolumeMl        int
	Brand           string
	ApplicationDate time.Time
	NextApplication time.Time
}

func newSnapshot(list []*Animal) registrySnapshot {
	out := make([]animalRecord, 0, len(list))
	for _, a := range list {
		vs := make([]vaccineRecord, 0, len(a.vaccines))
		for _, v := range a.vaccines {
			vs = append(vs, vaccineRecord{
				VolumeMl:        v.volumeMl,
				Brand:           v.brand,
				ApplicationDate: v.appliedAt,
				NextApplication: v.nextApplication,
			})
		}
		out = append(out, animalRecord{
			ID:       a.id,
			Name:     a.name,
			Age:      a.age,
			Vaccines: vs,
			OwnerIDs: a.OwnerIDs(),
		})
	}
	return registrySnapshot{Format: snapshotFormat, Animals: out}
}

// validate corre antes de tocar el registro; cualquier falla es ErrDeserialization.
func (snap registrySnapshot) validate() error {
	if snap.Format != snapshotFormat {
		return fmt.Errorf("%w: unknown snapshot format %q", ErrDeserialization, snap.Format)
	}
	seen := make(map[uuid.UUID]struct{}, len(snap.Animals))
	for i, r := range snap.Animals {
		if r.ID == uuid.Nil {
			return fmt.Errorf("%w: record %d has no id", ErrDeserialization, i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: record %d repeats id %s", ErrDeserialization, i, r.ID)
		}
		seen[r.ID] = struct{}{}

		if r.Age < 0 {
			return fmt.Errorf("%w: record %d has negative age %d", ErrDeserialization, i, r.Age)
		}
		for j, v := range r.Vaccines {
			if !v.NextApplication.After(v.ApplicationDate) {
				return fmt.Errorf("%w: record %d vaccine %d: next application not after application date", ErrDeserialization, i, j)
			}
		}
	}
	return nil
}

func (snap registrySnapshot) animals() []*Animal {
	out := make([]*Animal, 0, len(snap.Animals))
	for _, r := range snap.Animals {
		a := RestoreAnimal(r.ID, r.Name, r.Age)
		for _, v := range r.Vaccines {
			a.vaccines = append(a.vaccines, restoreVaccine(v.VolumeMl, v.Brand, v.ApplicationDate, v.NextApplication))
		}
		for _, id := range r.OwnerIDs {
			a.AddOwnerID(id)
		}
		out = append(out, a)
	}
	return out
}
