package animals

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultDelimiter es el separador de los archivos de animales y vacunas.
const DefaultDelimiter = ';'

const (
	animalFields  = 3 // id;name;age
	vaccineFields = 4 // animalId;volumeMl;brand;applicationDate
)

// ValidateDelimiter aplica las mismas reglas que encoding/csv.
func ValidateDelimiter(d rune) error {
	if d == 0 || d == '"' || d == '\r' || d == '\n' || !utf8.ValidRune(d) || d == utf8.RuneError {
		return fmt.Errorf("%w: delimiter %q not allowed", ErrInvalidInput, d)
	}
	return nil
}

// ParseDelimiter acepta exactamente un caracter; vacío => DefaultDelimiter.
// "\t" se acepta escrito literal (viene así de flags y env).
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return DefaultDelimiter, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: delimiter must be a single character, got %q", ErrInvalidInput, s)
	}
	d, _ := utf8.DecodeRuneInString(s)
	if err := ValidateDelimiter(d); err != nil {
		return 0, err
	}
	return d, nil
}

// ToDelimitedRecord serializa id, name, age. Inversa de ParseAnimalRecord.
func (a *Animal) ToDelimitedRecord(delimiter rune) string {
	return formatRecord(delimiter, a.id.String(), a.name, strconv.Itoa(a.age))
}

// ParseAnimalRecord parsea una fila id;name;age.
func ParseAnimalRecord(line string, delimiter rune) (*Animal, error) {
	fields, err := splitRecord(line, delimiter, animalFields)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(strings.TrimSpace(fields[0]))
	if err != nil {
		return nil, malformed("invalid id %q", fields[0])
	}
	age, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil || age < 0 {
		return nil, malformed("invalid age %q", fields[2])
	}

	return RestoreAnimal(id, fields[1], age), nil
}

// FormatVaccineRecord es la inversa de ParseVaccineRecord.
func FormatVaccineRecord(animalID uuid.UUID, v Vaccine, delimiter rune) string {
	return formatRecord(delimiter,
		animalID.String(),
		strconv.Itoa(v.volumeMl),
		v.brand,
		v.appliedAt.Format(DateLayout),
	)
}

// ParseVaccineRecord parsea animalId;volumeMl;brand;applicationDate.
func ParseVaccineRecord(line string, delimiter rune) (uuid.UUID, Vaccine, error) {
	fields, err := splitRecord(line, delimiter, vaccineFields)
	if err != nil {
		return uuid.Nil, Vaccine{}, err
	}

	animalID, err := uuid.Parse(strings.TrimSpace(fields[0]))
	if err != nil {
		return uuid.Nil, Vaccine{}, malformed("invalid animal id %q", fields[0])
	}
	volume, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return uuid.Nil, Vaccine{}, malformed("invalid volume %q", fields[1])
	}
	applied, err := time.Parse(DateLayout, strings.TrimSpace(fields[3]))
	if err != nil {
		return uuid.Nil, Vaccine{}, malformed("invalid application date %q", fields[3])
	}

	return animalID, NewVaccine(volume, fields[2], applied), nil
}

func splitRecord(line string, delimiter rune, want int) ([]string, error) {
	if err := ValidateDelimiter(delimiter); err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delimiter
	r.FieldsPerRecord = -1 // el conteo lo validamos acá para dar un error claro

	fields, err := r.Read()
	if err != nil {
		return nil, malformed("%v", err)
	}
	if len(fields) != want {
		return nil, malformed("expected %d fields, got %d", want, len(fields))
	}
	return fields, nil
}

func formatRecord(delimiter rune, fields ...string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Comma = delimiter
	// strings.Builder no falla; un delimitador inválido deja el buffer vacío.
	_ = w.Write(fields)
	w.Flush()
	return strings.TrimRight(b.String(), "\r\n")
}
