package animals

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"animal-registry/internal/platform/blobcodec"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// -------------------------
// Test gateway (in-memory)
// -------------------------

type testGateway struct {
	mu    sync.Mutex
	files map[string][]byte
	// failWrites fuerza ErrIO en escrituras.
	failWrites bool
}

func newTestGateway() *testGateway {
	return &testGateway{files: map[string][]byte{}}
}

func (g *testGateway) put(path, content string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.files[path] = []byte(content)
}

func (g *testGateway) get(path string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return string(g.files[path])
}

func (g *testGateway) ReadLines(ctx context.Context, path string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrIO, os.ErrNotExist)
	}
	text := strings.TrimSuffix(string(b), "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

func (g *testGateway) WriteLines(ctx context.Context, path string, lines []string) error {
	if g.failWrites {
		return fmt.Errorf("%w: disk full", ErrIO)
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	g.put(path, b.String())
	return nil
}

func (g *testGateway) WriteBlob(ctx context.Context, path string, v any) error {
	if g.failWrites {
		return fmt.Errorf("%w: disk full", ErrIO)
	}
	b, err := blobcodec.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	g.put(path, string(b))
	return nil
}

func (g *testGateway) ReadBlob(ctx context.Context, path string, v any) error {
	g.mu.Lock()
	b, ok := g.files[path]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %w", ErrIO, os.ErrNotExist)
	}
	if err := blobcodec.Decode(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return nil
}

type testResolver map[string]uuid.UUID

func (r testResolver) OwnerIDByUsername(ctx context.Context, username string) (uuid.UUID, error) {
	id, ok := r[username]
	if !ok {
		return uuid.Nil, fmt.Errorf("owner %s: %w", username, ErrNotFound)
	}
	return id, nil
}

// downResolver simula un directorio de dueños caído.
type downResolver struct{ err error }

func (r downResolver) OwnerIDByUsername(ctx context.Context, username string) (uuid.UUID, error) {
	return uuid.Nil, r.err
}

func newTestService(now time.Time) *Service {
	s := NewService(nil)
	s.now = func() time.Time { return now }
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -------------------------
// Tests
// -------------------------

func TestService_EmptyRegistry(t *testing.T) {
	s := NewService(nil)

	_, ok := s.FindByID(uuid.New())
	assert.False(t, ok)

	_, err := s.FindByName("Rex")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.AddVaccineToAnimalByName("Rex", 10, "X")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, s.GenerateExpiryReport(time.Now()))
	assert.Empty(t, s.Animals())
}

func TestService_FindByName_FirstInsertedWins(t *testing.T) {
	s := NewService(nil)
	first, err := s.Create("Rex", 3)
	require.NoError(t, err)
	_, err = s.Create("Rex", 7)
	require.NoError(t, err)

	got, err := s.FindByName("Rex")
	require.NoError(t, err)
	assert.Equal(t, first.ID(), got.ID())

	// FindByName es exacto; FindAllByName no distingue mayúsculas.
	_, err = s.FindByName("rex")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, s.FindAllByName("REX"), 2)
}

func TestService_Create_Validates(t *testing.T) {
	s := NewService(nil)

	_, err := s.Create("  ", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.Create("Rex", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	a := NewAnimal("Milo", 2)
	require.NoError(t, s.Add(a))
	assert.ErrorIs(t, s.Add(RestoreAnimal(a.ID(), "Otro", 1)), ErrDuplicateID)
	assert.ErrorIs(t, s.Add(nil), ErrInvalidInput)
}

func TestService_RejectsLineBreaks(t *testing.T) {
	s := newTestService(date(2024, 1, 1))

	for _, name := range []string{"Rex\nJr", "Rex\r", "\nRex"} {
		_, err := s.Create(name, 3)
		assert.ErrorIs(t, err, ErrInvalidInput, "name %q", name)
	}
	assert.ErrorIs(t, s.Add(RestoreAnimal(uuid.New(), "Milo\r\nII", 2)), ErrInvalidInput)
	assert.Equal(t, 0, s.Len())

	_, err := s.Create("Rex", 3)
	require.NoError(t, err)
	assert.ErrorIs(t, s.AddVaccineToAnimalByName("Rex", 10, "Pfi\nzer"), ErrInvalidInput)
	rex, _ := s.FindByName("Rex")
	assert.Empty(t, rex.Vaccines())
}

func TestService_AddVaccineToAnimalByName_Validates(t *testing.T) {
	s := newTestService(date(2024, 1, 1))
	_, err := s.Create("Rex", 3)
	require.NoError(t, err)

	assert.ErrorIs(t, s.AddVaccineToAnimalByName("Rex", 0, "Pfizer"), ErrInvalidInput)
	assert.ErrorIs(t, s.AddVaccineToAnimalByName("Rex", -5, "Pfizer"), ErrInvalidInput)
	assert.ErrorIs(t, s.AddVaccineToAnimalByName("Rex", 10, "  "), ErrInvalidInput)
	// la validación va antes que la búsqueda
	assert.ErrorIs(t, s.AddVaccineToAnimalByName("Nope", 0, ""), ErrInvalidInput)
	assert.ErrorIs(t, s.AddVaccineToAnimalByName("Nope", 10, "Pfizer"), ErrNotFound)

	rex, _ := s.FindByName("Rex")
	assert.Empty(t, rex.Vaccines())
}

// Un nombre aceptado por Create tiene que volver igual después de
// exportar e importar el archivo delimitado.
func TestService_CreatedNamesSurviveDelimitedExport(t *testing.T) {
	nameGen := rapid.StringMatching(`[A-Za-z0-9 ñ;,|"'\t\r\n.-]{1,16}`)

	rapid.Check(t, func(t *rapid.T) {
		d := delimiterGen.Draw(t, "delimiter")
		name := nameGen.Draw(t, "name")

		s := NewService(nil)
		created, err := s.Create(name, rapid.IntRange(0, 30).Draw(t, "age"))
		if strings.ContainsAny(name, "\r\n") || strings.TrimSpace(name) == "" {
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("create %q: want ErrInvalidInput, got %v", name, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}

		gw := newTestGateway()
		ctx := context.Background()
		if err := s.SaveToDelimitedFile(ctx, "a.csv", d, gw); err != nil {
			t.Fatalf("save: %v", err)
		}
		other := NewService(nil)
		res, err := other.LoadAnimalsFromDelimitedFile(ctx, "a.csv", d, gw)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if res.Loaded != 1 || len(res.Skipped) != 0 {
			t.Fatalf("loaded=%d skipped=%d for %q", res.Loaded, len(res.Skipped), name)
		}
		got, ok := other.FindByID(created.ID())
		if !ok || !created.Equal(&got) {
			t.Fatalf("name %q did not survive export", created.Name())
		}
	})
}

func TestService_ReturnsDefensiveCopies(t *testing.T) {
	s := newTestService(date(2025, 1, 1))
	rex, err := s.Create("Rex", 3)
	require.NoError(t, err)

	got, ok := s.FindByID(rex.ID())
	require.True(t, ok)
	got.AddVaccine(10, "X")
	got.AddOwnerID(uuid.New())

	again, _ := s.FindByID(rex.ID())
	assert.Empty(t, again.Vaccines())
	assert.Empty(t, again.OwnerIDs())

	list := s.Animals()
	list[0].AddVaccine(5, "Y")
	again, _ = s.FindByID(rex.ID())
	assert.Empty(t, again.Vaccines())
}

func TestService_AddVaccineToAnimalByName_UsesClock(t *testing.T) {
	now := date(2025, 3, 10)
	s := newTestService(now)
	_, err := s.Create("Rex", 3)
	require.NoError(t, err)

	require.NoError(t, s.AddVaccineToAnimalByName("Rex", 120, "Pfizer"))

	rex, _ := s.FindByName("Rex")
	require.Len(t, rex.Vaccines(), 1)
	v := rex.Vaccines()[0]
	assert.Equal(t, now, v.ApplicationDate())
	assert.Equal(t, date(2026, 3, 10), v.NextApplicationDate())
}

func TestService_LoadAnimals_SkipsMalformedRows(t *testing.T) {
	gw := newTestGateway()
	gw.put("animals.csv", strings.Join([]string{
		uuid.NewString() + ";Rex;3",
		uuid.NewString() + ";Milo;2",
		"",
		uuid.NewString() + ";Luna;abc", // edad inválida
		uuid.NewString() + ";Tom",      // faltan campos
		"no-uuid;Kira;4",
		uuid.NewString() + ";Nala;1",
	}, "\n"))

	s := NewService(nil)
	res, err := s.LoadAnimalsFromDelimitedFile(context.Background(), "animals.csv", ';', gw)
	require.NoError(t, err)

	assert.True(t, res.Appended)
	assert.Equal(t, 3, res.Loaded)
	require.Len(t, res.Skipped, 3)
	assert.Equal(t, 4, res.Skipped[0].Line)
	for _, sk := range res.Skipped {
		assert.ErrorIs(t, sk, ErrMalformedRecord)
	}
	assert.Equal(t, 3, s.Len())
}

func TestService_LoadAnimals_Appends(t *testing.T) {
	gw := newTestGateway()
	gw.put("animals.csv", uuid.NewString()+";Rex;3\n"+uuid.NewString()+";Milo;2\n")

	s := NewService(nil)
	ctx := context.Background()
	_, err := s.LoadAnimalsFromDelimitedFile(ctx, "animals.csv", ';', gw)
	require.NoError(t, err)
	res, err := s.LoadAnimalsFromDelimitedFile(ctx, "animals.csv", ';', gw)
	require.NoError(t, err)

	assert.True(t, res.Appended)
	assert.Equal(t, 4, s.Len())
}

func TestService_LoadAnimals_EmptyFileAndIOError(t *testing.T) {
	gw := newTestGateway()
	gw.put("empty.csv", "")
	s := NewService(nil)
	ctx := context.Background()

	res, err := s.LoadAnimalsFromDelimitedFile(ctx, "empty.csv", ';', gw)
	require.NoError(t, err)
	assert.False(t, res.Appended)

	_, err = s.LoadAnimalsFromDelimitedFile(ctx, "missing.csv", ';', gw)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = s.LoadAnimalsFromDelimitedFile(ctx, "empty.csv", '"', gw)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_LoadVaccines_GroupsByAnimal(t *testing.T) {
	s := NewService(nil)
	rex, _ := s.Create("Rex", 3)
	milo, _ := s.Create("Milo", 2)

	gw := newTestGateway()
	gw.put("vaccines.csv", strings.Join([]string{
		rex.ID().String() + ";120;Pfizer;2024-01-01",
		milo.ID().String() + ";50;Zoetis;2024-05-10",
		rex.ID().String() + ";80;Merial;2024-02-01",
		rex.ID().String() + ";x;Bad;2024-02-01",
	}, "\n"))

	res, err := s.LoadVaccinesFromDelimitedFile(context.Background(), "vaccines.csv", ';', gw)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Loaded)
	assert.Len(t, res.Skipped, 1)

	got, _ := s.FindByID(rex.ID())
	require.Len(t, got.Vaccines(), 2)
	assert.Equal(t, "Pfizer", got.Vaccines()[0].Brand())
	assert.Equal(t, "Merial", got.Vaccines()[1].Brand())
	assert.Equal(t, date(2025, 1, 1), got.Vaccines()[0].NextApplicationDate())
}

func TestService_LoadVaccines_UnknownAnimalAppliesNothing(t *testing.T) {
	s := NewService(nil)
	rex, _ := s.Create("Rex", 3)

	gw := newTestGateway()
	gw.put("vaccines.csv", strings.Join([]string{
		rex.ID().String() + ";120;Pfizer;2024-01-01",
		uuid.NewString() + ";50;Zoetis;2024-05-10",
	}, "\n"))

	_, err := s.LoadVaccinesFromDelimitedFile(context.Background(), "vaccines.csv", ';', gw)
	assert.ErrorIs(t, err, ErrNotFound)

	got, _ := s.FindByID(rex.ID())
	assert.Empty(t, got.Vaccines())
}

func TestService_SaveVaccines_RoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway()

	s := newTestService(date(2024, 7, 1))
	_, _ = s.Create("Rex", 3)
	require.NoError(t, s.AddVaccineToAnimalByName("Rex", 120, "Pfizer"))
	require.NoError(t, s.SaveToDelimitedFile(ctx, "animals.csv", ',', gw))
	require.NoError(t, s.SaveVaccinesToDelimitedFile(ctx, "vaccines.csv", ',', gw))

	other := NewService(nil)
	_, err := other.LoadAnimalsFromDelimitedFile(ctx, "animals.csv", ',', gw)
	require.NoError(t, err)
	_, err = other.LoadVaccinesFromDelimitedFile(ctx, "vaccines.csv", ',', gw)
	require.NoError(t, err)

	want := s.Animals()
	got := other.Animals()
	require.Len(t, got, 1)
	assert.True(t, want[0].Equal(&got[0]))
}

func TestService_Binary_ReplacesRegistry(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway()

	s := newTestService(date(2024, 1, 1))
	rex, _ := s.Create("Rex", 3)
	_, _ = s.Create("Milo", 2)
	require.NoError(t, s.AddVaccineToAnimalByName("Rex", 120, "Pfizer"))
	owner := uuid.New()
	_, err := s.AddOwnerByID(ctx, rex.ID(), "ana", testResolver{"ana": owner})
	require.NoError(t, err)
	require.NoError(t, s.SaveToBinary(ctx, "registry.bin", gw))

	_, _ = s.Create("Tom", 1)
	require.Equal(t, 3, s.Len())

	require.NoError(t, s.LoadFromBinary(ctx, "registry.bin", gw))
	assert.Equal(t, 2, s.Len())

	got, ok := s.FindByID(rex.ID())
	require.True(t, ok)
	assert.True(t, got.HasOwner(owner))
	require.Len(t, got.Vaccines(), 1)
	assert.Equal(t, date(2025, 1, 1), got.Vaccines()[0].NextApplicationDate())

	_, err = s.FindByName("Tom")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Binary_CorruptBlobLeavesRegistryUntouched(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway()
	gw.put("bad.bin", "garbage, not a registry")

	s := NewService(nil)
	_, _ = s.Create("Rex", 3)

	err := s.LoadFromBinary(ctx, "bad.bin", gw)
	assert.ErrorIs(t, err, ErrDeserialization)
	assert.Equal(t, 1, s.Len())

	err = s.LoadFromBinary(ctx, "missing.bin", gw)
	assert.ErrorIs(t, err, ErrIO)
	assert.Equal(t, 1, s.Len())
}

func TestService_Binary_ForeignBlobIsRejected(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway()

	// lista de dueños: gob la decodificaría campo a campo en []animalRecord
	type ownerRow struct {
		ID        uuid.UUID
		Username  string
		Name      string
		CreatedAt time.Time
	}
	foreign := []ownerRow{
		{Username: "ana", Name: "Ana", CreatedAt: date(2024, 1, 1)},
		{Username: "bob", Name: "Bob", CreatedAt: date(2024, 1, 2)},
	}
	require.NoError(t, gw.WriteBlob(ctx, "owners.bin", &foreign))

	// envoltorio correcto pero sin marca
	unmarked := registrySnapshot{Animals: []animalRecord{{ID: uuid.New(), Name: "Tom"}}}
	require.NoError(t, gw.WriteBlob(ctx, "unmarked.bin", &unmarked))

	s := NewService(nil)
	rex, _ := s.Create("Rex", 3)

	for _, path := range []string{"owners.bin", "unmarked.bin"} {
		err := s.LoadFromBinary(ctx, path, gw)
		assert.ErrorIs(t, err, ErrDeserialization, path)
		assert.Equal(t, 1, s.Len(), path)
		_, ok := s.FindByID(rex.ID())
		assert.True(t, ok, path)
	}
}

func TestService_Binary_InvalidRecordsLeaveRegistryUntouched(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway()
	id := uuid.New()
	applied := date(2024, 1, 1)

	cases := map[string][]animalRecord{
		"nil id":    {{ID: uuid.Nil, Name: "Tom"}},
		"duplicate": {{ID: id, Name: "Tom"}, {ID: id, Name: "Tom II"}},
		"age":       {{ID: uuid.New(), Name: "Tom", Age: -2}},
		"vaccine": {{ID: uuid.New(), Name: "Tom", Vaccines: []vaccineRecord{
			{VolumeMl: 10, Brand: "X", ApplicationDate: applied, NextApplication: applied},
		}}},
	}

	s := NewService(nil)
	_, _ = s.Create("Rex", 3)
	for name, recs := range cases {
		snap := registrySnapshot{Format: snapshotFormat, Animals: recs}
		require.NoError(t, gw.WriteBlob(ctx, name+".bin", &snap))

		err := s.LoadFromBinary(ctx, name+".bin", gw)
		assert.ErrorIs(t, err, ErrDeserialization, name)
		assert.Equal(t, 1, s.Len(), name)
		_, err = s.FindByName("Rex")
		assert.NoError(t, err, name)
	}
}

func TestService_Binary_EmptyRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway()

	require.NoError(t, NewService(nil).SaveToBinary(ctx, "empty.bin", gw))

	s := NewService(nil)
	_, _ = s.Create("Rex", 3)
	require.NoError(t, s.LoadFromBinary(ctx, "empty.bin", gw))
	assert.Equal(t, 0, s.Len())
}

func TestService_SaveErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway()
	gw.failWrites = true

	s := NewService(nil)
	_, _ = s.Create("Rex", 3)
	assert.ErrorIs(t, s.SaveToDelimitedFile(ctx, "a.csv", ';', gw), ErrIO)
	assert.ErrorIs(t, s.SaveToBinary(ctx, "a.bin", gw), ErrIO)
}

func TestService_AddOwner(t *testing.T) {
	ctx := context.Background()
	s := NewService(nil)
	rex, _ := s.Create("Rex", 3)
	_, _ = s.Create("Milo", 2)

	ana, bob := uuid.New(), uuid.New()
	owners := testResolver{"ana": ana, "bob": bob}

	id, err := s.AddOwnerByIndex(ctx, 0, "ana", owners)
	require.NoError(t, err)
	assert.Equal(t, rex.ID(), id)

	_, err = s.AddOwnerByID(ctx, rex.ID(), "bob", owners)
	require.NoError(t, err)
	// idempotente
	_, err = s.AddOwnerByID(ctx, rex.ID(), "bob", owners)
	require.NoError(t, err)

	got, _ := s.FindByID(rex.ID())
	assert.Len(t, got.OwnerIDs(), 2)

	_, err = s.AddOwnerByIndex(ctx, 5, "ana", owners)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddOwnerByIndex(ctx, -1, "ana", owners)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddOwnerByID(ctx, uuid.New(), "ana", owners)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddOwnerByID(ctx, rex.ID(), "ghost", owners)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddOwnerByID(ctx, rex.ID(), "ana", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// directorio caído: no es "no encontrado"
	_, err = s.AddOwnerByID(ctx, rex.ID(), "ana", downResolver{errors.New("connection refused")})
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrNotFound)
	_, err = s.AddOwnerByIndex(ctx, 0, "ana", downResolver{fmt.Errorf("%w: timeout", ErrIO)})
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrNotFound)

	byName := s.OwnersByName("rex")
	require.Contains(t, byName, rex.ID())
	assert.ElementsMatch(t, []uuid.UUID{ana, bob}, byName[rex.ID()])
}
