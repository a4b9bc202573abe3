package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animal-registry/internal/platform/logger"

	"github.com/google/uuid"
)

// Service es el registro en memoria. Es dueño de todos los *Animal que guarda:
// hacia afuera solo salen copias (Clone).
//
// No tiene locks: un solo dueño por instancia. Quien necesite concurrencia
// serializa afuera (ver handler.go).
//
// Ojo con la asimetría de cargas:
//   - LoadAnimalsFromDelimitedFile AGREGA a la lista existente.
//   - LoadFromBinary REEMPLAZA la lista completa.
type Service struct {
	animals []*Animal
	now     func() time.Time
	log     logger.Logger
}

func NewService(log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		animals: make([]*Animal, 0),
		now:     time.Now,
		log:     log.With(map[string]any{"component": "animals"}),
	}
}

// ImportResult resume una carga desde archivo delimitado.
type ImportResult struct {
	// Appended es true si la carga agregó algo a la lista.
	Appended bool
	Loaded   int
	Skipped  []*RecordError
}

// Animals devuelve copias independientes en orden de inserción.
func (s *Service) Animals() []Animal {
	out := make([]Animal, 0, len(s.animals))
	for _, a := range s.animals {
		out = append(out, a.Clone())
	}
	return out
}

func (s *Service) Len() int { return len(s.animals) }

// Create agrega un animal nuevo con id generado.
func (s *Service) Create(name string, age int) (Animal, error) {
	if strings.TrimSpace(name) == "" || age < 0 || hasLineBreak(name) {
		return Animal{}, ErrInvalidInput
	}
	a := NewAnimal(strings.TrimSpace(name), age)
	if err := s.Add(a); err != nil {
		return Animal{}, err
	}
	return a.Clone(), nil
}

// Add registra un animal armado afuera. El registro pasa a ser su dueño.
// Un nombre con saltos de línea no sobrevive al export delimitado: se rechaza.
func (s *Service) Add(a *Animal) error {
	if a == nil || hasLineBreak(a.name) {
		return ErrInvalidInput
	}
	if s.findByID(a.id) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateID, a.id)
	}
	s.animals = append(s.animals, a)
	return nil
}

// FindByID no trata la ausencia como error: el bool es el marcador.
func (s *Service) FindByID(id uuid.UUID) (Animal, bool) {
	a := s.findByID(id)
	if a == nil {
		return Animal{}, false
	}
	return a.Clone(), true
}

// FindByName devuelve el primero por orden de inserción.
// El nombre no es único; si hay homónimos gana el más antiguo.
func (s *Service) FindByName(name string) (Animal, error) {
	a, err := s.findByName(name)
	if err != nil {
		return Animal{}, err
	}
	return a.Clone(), nil
}

// FindAllByName compara sin distinguir mayúsculas.
func (s *Service) FindAllByName(name string) []Animal {
	out := make([]Animal, 0)
	for _, a := range s.animals {
		if strings.EqualFold(a.name, name) {
			out = append(out, a.Clone())
		}
	}
	return out
}

// OwnersByName arma {animalID: [ownerIDs]} para los animales con ese nombre.
func (s *Service) OwnersByName(name string) map[uuid.UUID][]uuid.UUID {
	out := make(map[uuid.UUID][]uuid.UUID)
	for _, a := range s.animals {
		if !strings.EqualFold(a.name, name) {
			continue
		}
		if _, seen := out[a.id]; seen {
			continue
		}
		out[a.id] = a.OwnerIDs()
	}
	return out
}

func (s *Service) AddVaccineToAnimalByName(name string, volumeMl int, brand string) error {
	if volumeMl <= 0 || strings.TrimSpace(brand) == "" || hasLineBreak(brand) {
		return fmt.Errorf("%w: vaccine needs volume > 0 and a single-line brand", ErrInvalidInput)
	}
	a, err := s.findByName(name)
	if err != nil {
		return err
	}
	a.addVaccineAt(volumeMl, brand, s.now())
	return nil
}

// AddOwnerByIndex usa la posición (0-based) en el orden de inserción.
func (s *Service) AddOwnerByIndex(ctx context.Context, index int, username string, owners OwnerResolver) (uuid.UUID, error) {
	if index < 0 || index >= len(s.animals) {
		return uuid.Nil, fmt.Errorf("%w: animal index %d", ErrNotFound, index)
	}
	return s.addOwner(ctx, s.animals[index], username, owners)
}

func (s *Service) AddOwnerByID(ctx context.Context, id uuid.UUID, username string, owners OwnerResolver) (uuid.UUID, error) {
	a := s.findByID(id)
	if a == nil {
		return uuid.Nil, fmt.Errorf("%w: animal %s", ErrNotFound, id)
	}
	return s.addOwner(ctx, a, username, owners)
}

func (s *Service) addOwner(ctx context.Context, a *Animal, username string, owners OwnerResolver) (uuid.UUID, error) {
	if owners == nil {
		return uuid.Nil, fmt.Errorf("%w: owner resolver not configured", ErrInvalidInput)
	}
	ownerID, err := owners.OwnerIDByUsername(ctx, username)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrIO):
		return uuid.Nil, fmt.Errorf("owner %q: %w", username, err)
	default:
		// sin clasificar: se trata como falla del servicio de dueños (502)
		return uuid.Nil, fmt.Errorf("%w: owner %q: %w", ErrIO, username, err)
	}
	a.AddOwnerID(ownerID)
	return a.id, nil
}

// LoadAnimalsFromDelimitedFile NO limpia la lista: agrega al final.
// Las filas mal formadas se saltean (warn) y vuelven en Skipped.
func (s *Service) LoadAnimalsFromDelimitedFile(ctx context.Context, path string, delimiter rune, gw Gateway) (ImportResult, error) {
	if err := ValidateDelimiter(delimiter); err != nil {
		return ImportResult{}, err
	}
	lines, err := gw.ReadLines(ctx, path)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	parsed := make([]*Animal, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		a, err := ParseAnimalRecord(line, delimiter)
		if err != nil {
			res.Skipped = append(res.Skipped, s.skip(path, i+1, line, err))
			continue
		}
		if s.findByID(a.id) != nil || containsID(parsed, a.id) {
			s.log.Warn("animal id already in registry; appending anyway", map[string]any{
				"path": path,
				"line": i + 1,
				"id":   a.id.String(),
			})
		}
		parsed = append(parsed, a)
	}

	s.animals = append(s.animals, parsed...)
	res.Loaded = len(parsed)
	res.Appended = len(parsed) > 0

	s.log.Info("animals appended from delimited file", map[string]any{
		"path":    path,
		"loaded":  res.Loaded,
		"skipped": len(res.Skipped),
		"total":   len(s.animals),
	})
	return res, nil
}

// LoadVaccinesFromDelimitedFile agrupa por animalId y resuelve TODOS los ids
// antes de aplicar: si falta uno, falla con ErrNotFound y no aplica nada.
func (s *Service) LoadVaccinesFromDelimitedFile(ctx context.Context, path string, delimiter rune, gw Gateway) (ImportResult, error) {
	if err := ValidateDelimiter(delimiter); err != nil {
		return ImportResult{}, err
	}
	lines, err := gw.ReadLines(ctx, path)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	order := make([]uuid.UUID, 0)
	groups := make(map[uuid.UUID][]Vaccine)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		animalID, v, err := ParseVaccineRecord(line, delimiter)
		if err != nil {
			res.Skipped = append(res.Skipped, s.skip(path, i+1, line, err))
			continue
		}
		if _, ok := groups[animalID]; !ok {
			order = append(order, animalID)
		}
		groups[animalID] = append(groups[animalID], v)
	}

	targets := make([]*Animal, 0, len(order))
	for _, id := range order {
		a := s.findByID(id)
		if a == nil {
			s.log.Warn("vaccine batch references unknown animal; nothing applied", map[string]any{
				"path": path,
				"id":   id.String(),
			})
			return res, fmt.Errorf("%w: error while assigning vaccines: animal with id %s not found", ErrNotFound, id)
		}
		targets = append(targets, a)
	}

	for i, a := range targets {
		vs := groups[order[i]]
		if a.AddVaccines(vs) {
			res.Loaded += len(vs)
		}
	}
	res.Appended = res.Loaded > 0

	s.log.Info("vaccines loaded from delimited file", map[string]any{
		"path":    path,
		"loaded":  res.Loaded,
		"animals": len(targets),
		"skipped": len(res.Skipped),
	})
	return res, nil
}

// SaveToDelimitedFile escribe una línea id;name;age por animal.
func (s *Service) SaveToDelimitedFile(ctx context.Context, path string, delimiter rune, gw Gateway) error {
	if err := ValidateDelimiter(delimiter); err != nil {
		return err
	}
	lines := make([]string, 0, len(s.animals))
	for _, a := range s.animals {
		lines = append(lines, a.ToDelimitedRecord(delimiter))
	}
	return gw.WriteLines(ctx, path, lines)
}

// SaveVaccinesToDelimitedFile es la inversa de LoadVaccinesFromDelimitedFile.
func (s *Service) SaveVaccinesToDelimitedFile(ctx context.Context, path string, delimiter rune, gw Gateway) error {
	if err := ValidateDelimiter(delimiter); err != nil {
		return err
	}
	lines := make([]string, 0)
	for _, a := range s.animals {
		for _, v := range a.vaccines {
			lines = append(lines, FormatVaccineRecord(a.id, v, delimiter))
		}
	}
	return gw.WriteLines(ctx, path, lines)
}

// SaveToBinary escribe la lista completa como un único blob.
func (s *Service) SaveToBinary(ctx context.Context, path string, gw Gateway) error {
	snap := newSnapshot(s.animals)
	if err := gw.WriteBlob(ctx, path, &snap); err != nil {
		return err
	}
	s.log.Info("registry saved to binary", map[string]any{"path": path, "animals": len(snap.Animals)})
	return nil
}

// LoadFromBinary REEMPLAZA el registro. Decodifica y valida aparte;
// si algo falla el registro queda como estaba.
func (s *Service) LoadFromBinary(ctx context.Context, path string, gw Gateway) error {
	var snap registrySnapshot
	if err := gw.ReadBlob(ctx, path, &snap); err != nil {
		return err
	}
	if err := snap.validate(); err != nil {
		s.log.Warn("rejected binary snapshot", map[string]any{"path": path, "err": err})
		return err
	}
	loaded := snap.animals()

	previous := len(s.animals)
	s.clear()
	s.animals = append(s.animals, loaded...)

	s.log.Info("registry replaced from binary", map[string]any{
		"path":     path,
		"animals":  len(loaded),
		"replaced": previous,
	})
	return nil
}

func (s *Service) clear() {
	clear(s.animals)
	s.animals = s.animals[:0]
}

func (s *Service) skip(path string, line int, text string, err error) *RecordError {
	re := &RecordError{Line: line, Text: text, Err: err}
	s.log.Warn("skipping malformed row", map[string]any{
		"path": path,
		"line": line,
		"err":  err,
	})
	return re
}

func (s *Service) findByID(id uuid.UUID) *Animal {
	for _, a := range s.animals {
		if a.id == id {
			return a
		}
	}
	return nil
}

func (s *Service) findByName(name string) (*Animal, error) {
	for _, a := range s.animals {
		if a.name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: animal with name %s not found", ErrNotFound, name)
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

func containsID(list []*Animal, id uuid.UUID) bool {
	for _, a := range list {
		if a.id == id {
			return true
		}
	}
	return false
}
