package animals

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Animal es el agregado raíz del registro.
// El id se asigna al crear y no cambia; las vacunas solo se agregan.
type Animal struct {
	id   uuid.UUID
	name string
	age  int

	vaccines []Vaccine
	ownerIDs map[uuid.UUID]struct{}
}

// NewAnimal crea un animal con id nuevo.
func NewAnimal(name string, age int) *Animal {
	return RestoreAnimal(uuid.New(), name, age)
}

// RestoreAnimal reconstruye un animal con un id ya existente (CSV, snapshot).
func RestoreAnimal(id uuid.UUID, name string, age int) *Animal {
	return &Animal{
		id:       id,
		name:     name,
		age:      age,
		vaccines: make([]Vaccine, 0),
		ownerIDs: make(map[uuid.UUID]struct{}),
	}
}

func (a *Animal) ID() uuid.UUID { return a.id }
func (a *Animal) Name() string  { return a.name }
func (a *Animal) Age() int      { return a.age }

// Vaccines devuelve una copia en orden de inserción.
func (a *Animal) Vaccines() []Vaccine {
	return slices.Clone(a.vaccines)
}

// OwnerIDs devuelve una copia ordenada (el set no tiene orden propio).
func (a *Animal) OwnerIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(a.ownerIDs))
	for id := range a.ownerIDs {
		out = append(out, id)
	}
	slices.SortFunc(out, func(x, y uuid.UUID) int {
		return bytes.Compare(x[:], y[:])
	})
	return out
}

func (a *Animal) HasOwner(ownerID uuid.UUID) bool {
	_, ok := a.ownerIDs[ownerID]
	return ok
}

// AddVaccine aplica una dosis hoy. No falla.
func (a *Animal) AddVaccine(volumeMl int, brand string) {
	a.addVaccineAt(volumeMl, brand, time.Now())
}

func (a *Animal) addVaccineAt(volumeMl int, brand string, appliedAt time.Time) {
	a.vaccines = append(a.vaccines, NewVaccine(volumeMl, brand, appliedAt))
}

// AddVaccines agrega el lote completo. Devuelve true si el lote cambió la lista,
// igual que la carga batch desde CSV.
func (a *Animal) AddVaccines(vs []Vaccine) bool {
	if len(vs) == 0 {
		return false
	}
	a.vaccines = append(a.vaccines, vs...)
	return true
}

// AddOwnerID es idempotente.
func (a *Animal) AddOwnerID(ownerID uuid.UUID) {
	if a.ownerIDs == nil {
		a.ownerIDs = make(map[uuid.UUID]struct{})
	}
	a.ownerIDs[ownerID] = struct{}{}
}

// Clone hace deep copy; lo que sale del registro siempre pasa por acá.
func (a *Animal) Clone() Animal {
	owners := make(map[uuid.UUID]struct{}, len(a.ownerIDs))
	for id := range a.ownerIDs {
		owners[id] = struct{}{}
	}
	return Animal{
		id:       a.id,
		name:     a.name,
		age:      a.age,
		vaccines: slices.Clone(a.vaccines),
		ownerIDs: owners,
	}
}

// Equal compara el grafo completo: vacunas en orden, owners como set.
func (a *Animal) Equal(o *Animal) bool {
	if a == nil || o == nil {
		return a == o
	}
	if a.id != o.id || a.name != o.name || a.age != o.age {
		return false
	}
	if !slices.EqualFunc(a.vaccines, o.vaccines, Vaccine.Equal) {
		return false
	}
	if len(a.ownerIDs) != len(o.ownerIDs) {
		return false
	}
	for id := range a.ownerIDs {
		if _, ok := o.ownerIDs[id]; !ok {
			return false
		}
	}
	return true
}
