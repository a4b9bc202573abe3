package animals

import "time"

// VaccineIntervalYears es la política fija entre una aplicación y la siguiente.
const VaccineIntervalYears = 1

// DateLayout es el formato de fecha en archivos delimitados y reportes.
const DateLayout = "2006-01-02"

// Vaccine es inmutable: solo se construye con NewVaccine.
type Vaccine struct {
	volumeMl        int
	brand           string
	appliedAt       time.Time
	nextApplication time.Time
}

// NewVaccine calcula la próxima aplicación a partir de appliedAt.
func NewVaccine(volumeMl int, brand string, appliedAt time.Time) Vaccine {
	return Vaccine{
		volumeMl:        volumeMl,
		brand:           brand,
		appliedAt:       appliedAt,
		nextApplication: nextApplicationDate(appliedAt),
	}
}

// restoreVaccine reconstruye una vacuna persistida sin recalcular fechas.
func restoreVaccine(volumeMl int, brand string, appliedAt, next time.Time) Vaccine {
	return Vaccine{
		volumeMl:        volumeMl,
		brand:           brand,
		appliedAt:       appliedAt,
		nextApplication: next,
	}
}

func nextApplicationDate(appliedAt time.Time) time.Time {
	return appliedAt.AddDate(VaccineIntervalYears, 0, 0)
}

func (v Vaccine) VolumeMl() int                  { return v.volumeMl }
func (v Vaccine) Brand() string                  { return v.brand }
func (v Vaccine) ApplicationDate() time.Time     { return v.appliedAt }
func (v Vaccine) NextApplicationDate() time.Time { return v.nextApplication }

// IsExpired usa time.Now como fecha de referencia.
func (v Vaccine) IsExpired() bool {
	return IsExpired(v, time.Now())
}

func (v Vaccine) IsExpiredAt(ref time.Time) bool {
	return IsExpired(v, ref)
}

// IsExpired es true sii ref es estrictamente posterior a la próxima aplicación.
func IsExpired(v Vaccine, ref time.Time) bool {
	return ref.After(v.nextApplication)
}

// Equal compara por valor; las fechas con time.Equal (ignora location).
func (v Vaccine) Equal(o Vaccine) bool {
	return v.volumeMl == o.volumeMl &&
		v.brand == o.brand &&
		v.appliedAt.Equal(o.appliedAt) &&
		v.nextApplication.Equal(o.nextApplication)
}
