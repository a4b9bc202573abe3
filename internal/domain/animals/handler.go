package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"animal-registry/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Deps agrupa lo que necesitan los handlers del registro.
type Deps struct {
	Service *Service
	Gateway Gateway
	Owners  OwnerResolver // puede ser nil: los endpoints de dueños responden 400

	// Delimiter por defecto para imports/exports si el request no trae uno.
	Delimiter rune
	Log       logger.Logger
}

// api serializa todo acceso al Service: el registro no tiene locks propios.
type api struct {
	mu    sync.Mutex
	svc   *Service
	gw    Gateway
	owner OwnerResolver
	delim rune
	log   logger.Logger
}

func RegisterRoutes(r chi.Router, d Deps) {
	if d.Delimiter == 0 {
		d.Delimiter = DefaultDelimiter
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	h := &api{
		svc:   d.Service,
		gw:    d.Gateway,
		owner: d.Owners,
		delim: d.Delimiter,
		log:   d.Log.With(map[string]any{"component": "animals-http"}),
	}

	r.Route("/animals", func(ar chi.Router) {
		ar.Get("/", h.listAnimals)
		ar.Post("/", h.createAnimal)
		ar.Get("/{animalID}", h.getAnimal)
		ar.Post("/{animalID}/owners", h.addOwnerByID)
		ar.Post("/at/{index}/owners", h.addOwnerByIndex)

		ar.Get("/by-name/{name}", h.getAnimalByName)
		ar.Get("/by-name/{name}/owners", h.ownersByName)
		ar.Post("/by-name/{name}/vaccines", h.addVaccineByName)
	})

	r.Post("/imports/animals", h.importAnimals)
	r.Post("/imports/vaccines", h.importVaccines)
	r.Post("/exports/animals", h.exportAnimals)
	r.Post("/exports/vaccines", h.exportVaccines)

	r.Post("/snapshots/save", h.saveSnapshot)
	r.Post("/snapshots/load", h.loadSnapshot)

	r.Get("/reports/expired-vaccines", h.expiredReport)
	r.Post("/reports/expired-vaccines/export", h.exportExpiredReport)
}

type createAnimalRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type addVaccineRequest struct {
	VolumeMl int    `json:"volume_ml"`
	Brand    string `json:"brand"`
}

type addOwnerRequest struct {
	Username string `json:"username"`
}

// fileRequest sirve para imports/exports/snapshots. Path es relativo al data dir.
type fileRequest struct {
	Path      string `json:"path"`
	Delimiter string `json:"delimiter,omitempty"` // vacío = el configurado
}

type reportExportRequest struct {
	Path string `json:"path"`
	At   string `json:"at,omitempty"` // YYYY-MM-DD, vacío = hoy
}

type vaccineResponse struct {
	VolumeMl            int    `json:"volume_ml"`
	Brand               string `json:"brand"`
	ApplicationDate     string `json:"application_date"`
	NextApplicationDate string `json:"next_application_date"`
	Expired             bool   `json:"expired"`
}

type animalResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Age      int               `json:"age"`
	Vaccines []vaccineResponse `json:"vaccines"`
	OwnerIDs []string          `json:"owner_ids"`
}

type skippedRowResponse struct {
	Line  int    `json:"line"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

type importResponse struct {
	Appended bool                 `json:"appended"`
	Loaded   int                  `json:"loaded"`
	Skipped  []skippedRowResponse `json:"skipped"`
	Total    int                  `json:"total"`
}

type ownerAddedResponse struct {
	AnimalID string `json:"animal_id"`
	Username string `json:"username"`
}

type reportResponse struct {
	At    string   `json:"at"`
	Lines []string `json:"lines"`
}

// listAnimals godoc
// @Summary Listar animales
// @Description Orden de inserción. Con ?name= filtra sin distinguir mayúsculas.
// @Tags animals
// @Produce json
// @Param name query string false "nombre"
// @Success 200 {array} animalResponse
// @Router /animals [get]
func (h *api) listAnimals(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	h.mu.Lock()
	var items []Animal
	if name != "" {
		items = h.svc.FindAllByName(name)
	} else {
		items = h.svc.Animals()
	}
	h.mu.Unlock()

	out := make([]animalResponse, 0, len(items))
	for i := range items {
		out = append(out, toAnimalResponse(&items[i], time.Now()))
	}
	writeJSON(w, http.StatusOK, out)
}

// createAnimal godoc
// @Summary Crear animal
// @Tags animals
// @Accept json
// @Produce json
// @Param payload body createAnimalRequest true "name y age"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Router /animals [post]
func (h *api) createAnimal(w http.ResponseWriter, r *http.Request) {
	var req createAnimalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	a, err := h.svc.Create(req.Name, req.Age)
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAnimalResponse(&a, time.Now()))
}

// getAnimal godoc
// @Summary Buscar animal por id
// @Tags animals
// @Produce json
// @Param animalID path string true "uuid"
// @Success 200 {object} animalResponse
// @Failure 400 {string} string "invalid animal id"
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID} [get]
func (h *api) getAnimal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "animalID"))
	if err != nil {
		http.Error(w, "invalid animal id", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	a, ok := h.svc.FindByID(id)
	h.mu.Unlock()
	if !ok {
		http.Error(w, "animal not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toAnimalResponse(&a, time.Now()))
}

// getAnimalByName godoc
// @Summary Buscar animal por nombre (el primero insertado)
// @Tags animals
// @Produce json
// @Param name path string true "nombre exacto"
// @Success 200 {object} animalResponse
// @Failure 404 {string} string "animal not found"
// @Router /animals/by-name/{name} [get]
func (h *api) getAnimalByName(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	a, err := h.svc.FindByName(chi.URLParam(r, "name"))
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnimalResponse(&a, time.Now()))
}

// ownersByName godoc
// @Summary Dueños de los animales con ese nombre
// @Tags animals
// @Produce json
// @Param name path string true "nombre"
// @Success 200 {object} map[string][]string
// @Router /animals/by-name/{name}/owners [get]
func (h *api) ownersByName(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	byAnimal := h.svc.OwnersByName(chi.URLParam(r, "name"))
	h.mu.Unlock()

	out := make(map[string][]string, len(byAnimal))
	for animalID, ownerIDs := range byAnimal {
		out[animalID.String()] = uuidStrings(ownerIDs)
	}
	writeJSON(w, http.StatusOK, out)
}

// addVaccineByName godoc
// @Summary Aplicar vacuna (hoy) al primer animal con ese nombre
// @Tags animals
// @Accept json
// @Produce json
// @Param name path string true "nombre exacto"
// @Param payload body addVaccineRequest true "volume_ml y brand"
// @Success 201 {object} animalResponse
// @Failure 400 {string} string "volume_ml <= 0 o brand vacía"
// @Failure 404 {string} string "animal not found"
// @Router /animals/by-name/{name}/vaccines [post]
func (h *api) addVaccineByName(w http.ResponseWriter, r *http.Request) {
	var req addVaccineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	name := chi.URLParam(r, "name")

	h.mu.Lock()
	err := h.svc.AddVaccineToAnimalByName(name, req.VolumeMl, req.Brand)
	var a Animal
	if err == nil {
		a, err = h.svc.FindByName(name)
	}
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAnimalResponse(&a, time.Now()))
}

// addOwnerByID godoc
// @Summary Asociar dueño (por username) a un animal
// @Tags animals
// @Accept json
// @Produce json
// @Param animalID path string true "uuid"
// @Param payload body addOwnerRequest true "username"
// @Success 200 {object} ownerAddedResponse
// @Failure 404 {string} string "animal u owner no encontrado"
// @Failure 502 {string} string "directorio de dueños no disponible"
// @Router /animals/{animalID}/owners [post]
func (h *api) addOwnerByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "animalID"))
	if err != nil {
		http.Error(w, "invalid animal id", http.StatusBadRequest)
		return
	}
	var req addOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	animalID, err := h.svc.AddOwnerByID(r.Context(), id, req.Username, h.owner)
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ownerAddedResponse{AnimalID: animalID.String(), Username: req.Username})
}

// addOwnerByIndex godoc
// @Summary Asociar dueño por posición (0-based) en el registro
// @Tags animals
// @Accept json
// @Produce json
// @Param index path int true "posición"
// @Param payload body addOwnerRequest true "username"
// @Success 200 {object} ownerAddedResponse
// @Failure 404 {string} string "animal u owner no encontrado"
// @Router /animals/at/{index}/owners [post]
func (h *api) addOwnerByIndex(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	var req addOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	animalID, err := h.svc.AddOwnerByIndex(r.Context(), index, req.Username, h.owner)
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ownerAddedResponse{AnimalID: animalID.String(), Username: req.Username})
}

// importAnimals godoc
// @Summary Cargar animales desde archivo delimitado (AGREGA al registro)
// @Tags files
// @Accept json
// @Produce json
// @Param payload body fileRequest true "path relativo al data dir"
// @Success 200 {object} importResponse
// @Failure 400 {string} string "invalid path / delimiter"
// @Failure 502 {string} string "io error"
// @Router /imports/animals [post]
func (h *api) importAnimals(w http.ResponseWriter, r *http.Request) {
	req, delim, ok := h.decodeFileRequest(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	res, err := h.svc.LoadAnimalsFromDelimitedFile(r.Context(), req.Path, delim, h.gw)
	total := h.svc.Len()
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportResponse(res, total))
}

// importVaccines godoc
// @Summary Cargar vacunas desde archivo delimitado
// @Description Si alguna fila referencia un animal inexistente no se aplica nada (404).
// @Tags files
// @Accept json
// @Produce json
// @Param payload body fileRequest true "path relativo al data dir"
// @Success 200 {object} importResponse
// @Failure 404 {string} string "animal not found"
// @Router /imports/vaccines [post]
func (h *api) importVaccines(w http.ResponseWriter, r *http.Request) {
	req, delim, ok := h.decodeFileRequest(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	res, err := h.svc.LoadVaccinesFromDelimitedFile(r.Context(), req.Path, delim, h.gw)
	total := h.svc.Len()
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportResponse(res, total))
}

// exportAnimals godoc
// @Summary Guardar animales en archivo delimitado
// @Tags files
// @Accept json
// @Param payload body fileRequest true "path relativo al data dir"
// @Success 204
// @Router /exports/animals [post]
func (h *api) exportAnimals(w http.ResponseWriter, r *http.Request) {
	req, delim, ok := h.decodeFileRequest(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	err := h.svc.SaveToDelimitedFile(r.Context(), req.Path, delim, h.gw)
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportVaccines godoc
// @Summary Guardar vacunas en archivo delimitado
// @Tags files
// @Accept json
// @Param payload body fileRequest true "path relativo al data dir"
// @Success 204
// @Router /exports/vaccines [post]
func (h *api) exportVaccines(w http.ResponseWriter, r *http.Request) {
	req, delim, ok := h.decodeFileRequest(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	err := h.svc.SaveVaccinesToDelimitedFile(r.Context(), req.Path, delim, h.gw)
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// saveSnapshot godoc
// @Summary Guardar registro completo en binario
// @Tags snapshots
// @Accept json
// @Param payload body fileRequest true "path relativo al data dir"
// @Success 204
// @Router /snapshots/save [post]
func (h *api) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.decodeFileRequest(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	err := h.svc.SaveToBinary(r.Context(), req.Path, h.gw)
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadSnapshot godoc
// @Summary Cargar registro desde binario (REEMPLAZA el registro)
// @Tags snapshots
// @Accept json
// @Produce json
// @Param payload body fileRequest true "path relativo al data dir"
// @Success 200 {array} animalResponse
// @Failure 422 {string} string "deserialization error"
// @Router /snapshots/load [post]
func (h *api) loadSnapshot(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.decodeFileRequest(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	err := h.svc.LoadFromBinary(r.Context(), req.Path, h.gw)
	items := h.svc.Animals()
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	now := time.Now()
	out := make([]animalResponse, 0, len(items))
	for i := range items {
		out = append(out, toAnimalResponse(&items[i], now))
	}
	writeJSON(w, http.StatusOK, out)
}

// expiredReport godoc
// @Summary Reporte de vacunas vencidas
// @Tags reports
// @Produce json
// @Param at query string false "fecha de referencia YYYY-MM-DD (default hoy)"
// @Success 200 {object} reportResponse
// @Failure 400 {string} string "invalid date"
// @Router /reports/expired-vaccines [get]
func (h *api) expiredReport(w http.ResponseWriter, r *http.Request) {
	ref, err := parseRefDate(r.URL.Query().Get("at"))
	if err != nil {
		http.Error(w, "invalid date (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	lines := h.svc.GenerateExpiryReport(ref)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, reportResponse{At: ref.Format(DateLayout), Lines: lines})
}

// exportExpiredReport godoc
// @Summary Escribir reporte de vacunas vencidas a archivo
// @Tags reports
// @Accept json
// @Produce json
// @Param payload body reportExportRequest true "path y fecha opcional"
// @Success 200 {object} reportResponse
// @Router /reports/expired-vaccines/export [post]
func (h *api) exportExpiredReport(w http.ResponseWriter, r *http.Request) {
	var req reportExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return
	}
	ref, err := parseRefDate(req.At)
	if err != nil {
		http.Error(w, "invalid date (expected YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	lines, err := h.svc.WriteExpiryReport(r.Context(), req.Path, ref, h.gw)
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{At: ref.Format(DateLayout), Lines: lines})
}

func (h *api) decodeFileRequest(w http.ResponseWriter, r *http.Request) (fileRequest, rune, bool) {
	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return req, 0, false
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		http.Error(w, "path required", http.StatusBadRequest)
		return req, 0, false
	}

	delim := h.delim
	if req.Delimiter != "" {
		d, err := ParseDelimiter(req.Delimiter)
		if err != nil {
			http.Error(w, "invalid delimiter", http.StatusBadRequest)
			return req, 0, false
		}
		delim = d
	}
	return req, delim, true
}

// writeError traduce los sentinels del registro a status HTTP.
func (h *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
			"err":    err,
		})
	}
	http.Error(w, err.Error(), status)
}

// StatusFor mapea un error del registro a su status HTTP.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMalformedRecord):
		return http.StatusBadRequest
	case errors.Is(err, ErrDeserialization):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrIO):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseRefDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse(DateLayout, s)
}

func toAnimalResponse(a *Animal, now time.Time) animalResponse {
	vs := a.Vaccines()
	out := animalResponse{
		ID:       a.ID().String(),
		Name:     a.Name(),
		Age:      a.Age(),
		Vaccines: make([]vaccineResponse, 0, len(vs)),
		OwnerIDs: uuidStrings(a.OwnerIDs()),
	}
	for _, v := range vs {
		out.Vaccines = append(out.Vaccines, vaccineResponse{
			VolumeMl:            v.VolumeMl(),
			Brand:               v.Brand(),
			ApplicationDate:     v.ApplicationDate().Format(DateLayout),
			NextApplicationDate: v.NextApplicationDate().Format(DateLayout),
			Expired:             v.IsExpiredAt(now),
		})
	}
	return out
}

func toImportResponse(res ImportResult, total int) importResponse {
	out := importResponse{
		Appended: res.Appended,
		Loaded:   res.Loaded,
		Skipped:  make([]skippedRowResponse, 0, len(res.Skipped)),
		Total:    total,
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, skippedRowResponse{Line: s.Line, Text: s.Text, Error: s.Err.Error()})
	}
	return out
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
