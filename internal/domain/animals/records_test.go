package animals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var (
	delimiterGen = rapid.SampledFrom([]rune{';', ',', '|', '\t'})
	textGen      = rapid.StringMatching(`[A-Za-z0-9 ñáéü;,|"'\t.-]{0,24}`)
	dateGen      = rapid.Custom(func(t *rapid.T) time.Time {
		return time.Date(
			rapid.IntRange(1990, 2040).Draw(t, "year"),
			time.Month(rapid.IntRange(1, 12).Draw(t, "month")),
			rapid.IntRange(1, 28).Draw(t, "day"),
			0, 0, 0, 0, time.UTC)
	})
)

func TestParseAnimalRecord(t *testing.T) {
	id := uuid.New()

	a, err := ParseAnimalRecord(id.String()+";Rex;3", ';')
	require.NoError(t, err)
	assert.Equal(t, id, a.ID())
	assert.Equal(t, "Rex", a.Name())
	assert.Equal(t, 3, a.Age())

	bad := []string{
		"",
		id.String() + ";Rex",
		id.String() + ";Rex;3;extra",
		"nope;Rex;3",
		id.String() + ";Rex;-1",
		id.String() + ";Rex;tres",
		id.String() + `;"Rex;3`,
	}
	for _, line := range bad {
		_, err := ParseAnimalRecord(line, ';')
		assert.ErrorIs(t, err, ErrMalformedRecord, "line %q", line)
	}
}

func TestParseVaccineRecord(t *testing.T) {
	id := uuid.New()

	gotID, v, err := ParseVaccineRecord(id.String()+";120;Pfizer;2024-01-01", ';')
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 120, v.VolumeMl())
	assert.Equal(t, "Pfizer", v.Brand())
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), v.NextApplicationDate())

	for _, line := range []string{
		id.String() + ";120;Pfizer",
		id.String() + ";ml;Pfizer;2024-01-01",
		id.String() + ";120;Pfizer;01/01/2024",
	} {
		_, _, err := ParseVaccineRecord(line, ';')
		assert.ErrorIs(t, err, ErrMalformedRecord, "line %q", line)
	}
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]rune{"": ';', ";": ';', ",": ',', `\t`: '\t', "|": '|'}
	for in, want := range cases {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{";;", `"`, "\n"} {
		_, err := ParseDelimiter(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

func TestAnimalRecord_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := delimiterGen.Draw(t, "delimiter")
		a := RestoreAnimal(uuid.New(), textGen.Draw(t, "name"), rapid.IntRange(0, 40).Draw(t, "age"))

		got, err := ParseAnimalRecord(a.ToDelimitedRecord(d), d)
		if err != nil {
			t.Fatalf("parse %q: %v", a.ToDelimitedRecord(d), err)
		}
		if !a.Equal(got) {
			t.Fatalf("round trip mismatch: %q -> %q", a.Name(), got.Name())
		}
	})
}

func TestVaccineRecord_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := delimiterGen.Draw(t, "delimiter")
		id := uuid.New()
		v := NewVaccine(rapid.IntRange(0, 1000).Draw(t, "volume"), textGen.Draw(t, "brand"), dateGen.Draw(t, "applied"))

		gotID, got, err := ParseVaccineRecord(FormatVaccineRecord(id, v, d), d)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if gotID != id || !got.Equal(v) {
			t.Fatalf("round trip mismatch for %+v", v)
		}
	})
}

func TestBinary_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewService(nil)
		n := rapid.IntRange(0, 6).Draw(t, "animals")
		for i := 0; i < n; i++ {
			a := NewAnimal(textGen.Draw(t, "name"), rapid.IntRange(0, 30).Draw(t, "age"))
			vs := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) Vaccine {
				return NewVaccine(rapid.IntRange(1, 500).Draw(t, "ml"), textGen.Draw(t, "brand"), dateGen.Draw(t, "applied"))
			}), 0, 4).Draw(t, "vaccines")
			a.AddVaccines(vs)
			for j := rapid.IntRange(0, 3).Draw(t, "owners"); j > 0; j-- {
				a.AddOwnerID(uuid.New())
			}
			if err := s.Add(a); err != nil {
				t.Fatalf("add: %v", err)
			}
		}

		gw := newTestGateway()
		ctx := context.Background()
		if err := s.SaveToBinary(ctx, "r.bin", gw); err != nil {
			t.Fatalf("save: %v", err)
		}
		other := NewService(nil)
		if err := other.LoadFromBinary(ctx, "r.bin", gw); err != nil {
			t.Fatalf("load: %v", err)
		}

		want, got := s.Animals(), other.Animals()
		if len(want) != len(got) {
			t.Fatalf("len %d != %d", len(want), len(got))
		}
		for i := range want {
			if !want[i].Equal(&got[i]) {
				t.Fatalf("animal %d differs after round trip", i)
			}
		}
	})
}
