package animals

import (
	"context"
	"fmt"
	"time"
)

// GenerateExpiryReport arma una línea por vacuna vencida a la fecha ref.
// Orden: animales por inserción, luego vacunas por inserción. Solo lectura.
func (s *Service) GenerateExpiryReport(ref time.Time) []string {
	out := make([]string, 0)
	for _, a := range s.animals {
		for _, v := range a.vaccines {
			if !IsExpired(v, ref) {
				continue
			}
			out = append(out, expiryLine(a.name, v))
		}
	}
	return out
}

// ExpiryReport usa el reloj del servicio como referencia.
func (s *Service) ExpiryReport() []string {
	return s.GenerateExpiryReport(s.now())
}

// WriteExpiryReport persiste el reporte con WriteLines (sobrescribe el archivo).
func (s *Service) WriteExpiryReport(ctx context.Context, path string, ref time.Time, gw Gateway) ([]string, error) {
	lines := s.GenerateExpiryReport(ref)
	if err := gw.WriteLines(ctx, path, lines); err != nil {
		return nil, err
	}
	s.log.Info("expiry report written", map[string]any{
		"path":  path,
		"lines": len(lines),
		"ref":   ref.Format(DateLayout),
	})
	return lines, nil
}

func expiryLine(name string, v Vaccine) string {
	return fmt.Sprintf("%s has %s of %d ml expired on %s",
		name, v.brand, v.volumeMl, v.nextApplication.Format(DateLayout))
}
