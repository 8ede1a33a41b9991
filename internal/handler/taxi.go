package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cabfleet/taxi-api/internal/domain"
)

// createTaxiRequest is the body for POST / and each element of POST /bulk.
// Counter fields are deliberately absent: creation forces them to zero, so
// accepting them would only invite confusion.
type createTaxiRequest struct {
	Maker        string     `json:"maker"`
	Model        string     `json:"model"`
	Color        string     `json:"color"`
	Year         int        `json:"year"`
	RegisterDate *time.Time `json:"registerDate,omitempty"`
}

// updateTaxiRequest is the body for PUT /{id}: descriptive fields only.
type updateTaxiRequest struct {
	Maker string `json:"maker"`
	Model string `json:"model"`
	Color string `json:"color"`
	Year  int    `json:"year"`
}

type assignDriverRequest struct {
	DriverID string `json:"idDriver"`
}

type registerTripRequest struct {
	Distance *float64 `json:"distance"`
}

type updatePositionRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type findNearbyRequest struct {
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	Distance *int     `json:"distance"`
}

// listResponse wraps a page of taxis with its pagination echo.
type listResponse struct {
	Data       []domain.Taxi `json:"data"`
	Pagination pagination    `json:"pagination"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// CreateTaxi handles POST /.
func (s *Server) CreateTaxi(w http.ResponseWriter, r *http.Request) {
	var req createTaxiRequest
	if !s.decode(w, r, &req) {
		return
	}

	created, err := s.taxis.Create(r.Context(), taxiFromCreate(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, created)
}

// InsertTaxis handles POST /bulk.
func (s *Server) InsertTaxis(w http.ResponseWriter, r *http.Request) {
	var reqs []createTaxiRequest
	if !s.decode(w, r, &reqs) {
		return
	}
	if len(reqs) == 0 {
		s.writeValidationError(w, r, "at least one record is required")
		return
	}

	taxis := make([]domain.Taxi, len(reqs))
	for i, req := range reqs {
		taxis[i] = taxiFromCreate(req)
	}

	inserted, err := s.taxis.InsertMany(r.Context(), taxis)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, inserted)
}

// ListTaxis handles GET /.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100) plus
// equality filters ?maker=&model=&color=&year=&idDriver=.
func (s *Server) ListTaxis(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		s.writeValidationError(w, r, err.Error())
		return
	}
	page := domain.NewPaginationParams(intQuery(r, "page"), intQuery(r, "limit"))

	taxis, err := s.taxis.List(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.taxis.Count(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, listResponse{
		Data:       taxis,
		Pagination: pagination{Page: page.Page, Limit: page.Limit, Total: total},
	})
}

// CountTaxis handles GET /count with the same filters as ListTaxis.
func (s *Server) CountTaxis(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		s.writeValidationError(w, r, err.Error())
		return
	}

	n, err := s.taxis.Count(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]int64{"count": n})
}

// GetTaxi handles GET /{id}.
func (s *Server) GetTaxi(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	taxi, err := s.taxis.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, taxi)
}

// UpdateTaxi handles PUT /{id}.
func (s *Server) UpdateTaxi(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req updateTaxiRequest
	if !s.decode(w, r, &req) {
		return
	}

	updated, err := s.taxis.Update(r.Context(), id, domain.Taxi{
		Maker: req.Maker,
		Model: req.Model,
		Color: req.Color,
		Year:  req.Year,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, updated)
}

// RemoveTaxi handles DELETE /{id}.
func (s *Server) RemoveTaxi(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.taxis.Remove(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignDriver handles PUT /{id}/idDriver/assign.
func (s *Server) AssignDriver(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req assignDriverRequest
	if !s.decode(w, r, &req) {
		return
	}

	updated, err := s.taxis.AssignDriver(r.Context(), id, req.DriverID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, updated)
}

// RegisterTrip handles PUT /{id}/trip/register.
func (s *Server) RegisterTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req registerTripRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Distance == nil {
		s.writeValidationError(w, r, "distance is required")
		return
	}

	updated, err := s.taxis.RegisterTrip(r.Context(), id, *req.Distance)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, updated)
}

// UpdatePosition handles PUT /{id}/position/update.
func (s *Server) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req updatePositionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lon == nil {
		s.writeValidationError(w, r, "lat and lon are required")
		return
	}

	updated, err := s.taxis.UpdatePosition(r.Context(), id, *req.Lat, *req.Lon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, updated)
}

// FindTaxisNearby handles POST /position/findNearby.
func (s *Server) FindTaxisNearby(w http.ResponseWriter, r *http.Request) {
	var req findNearbyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lon == nil {
		s.writeValidationError(w, r, "lat and lon are required")
		return
	}
	if req.Distance == nil {
		s.writeValidationError(w, r, "distance is required")
		return
	}

	taxis, err := s.taxis.FindNearby(r.Context(), *req.Lat, *req.Lon, *req.Distance)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, taxis)
}

// --- request plumbing helpers ------------------------------------------------

// decode reads the JSON body into v, rejecting unknown fields. On failure it
// writes a 422 and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			s.writeValidationError(w, r, "request body is required")
		} else {
			s.writeValidationError(w, r, "malformed request body: "+err.Error())
		}
		return false
	}
	return true
}

// pathID parses the {id} path parameter. A malformed UUID cannot identify any
// record, so it is reported as not found rather than as a validation failure.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, domain.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// taxiFromCreate maps a create body onto the domain type. The service forces
// the counter fields; only descriptive fields travel through.
func taxiFromCreate(req createTaxiRequest) domain.Taxi {
	t := domain.Taxi{
		Maker: req.Maker,
		Model: req.Model,
		Color: req.Color,
		Year:  req.Year,
	}
	if req.RegisterDate != nil {
		t.RegisterDate = *req.RegisterDate
	}
	return t
}

// filterFromQuery reads the optional equality filters for list/count.
func filterFromQuery(r *http.Request) (domain.TaxiFilter, error) {
	var f domain.TaxiFilter
	q := r.URL.Query()

	if v := q.Get("maker"); v != "" {
		f.Maker = &v
	}
	if v := q.Get("model"); v != "" {
		f.Model = &v
	}
	if v := q.Get("color"); v != "" {
		f.Color = &v
	}
	if v := q.Get("idDriver"); v != "" {
		f.DriverID = &v
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return domain.TaxiFilter{}, errors.New("year must be an integer")
		}
		f.Year = &year
	}
	return f, nil
}

// intQuery returns the named query parameter as *int, or nil when absent or
// non-numeric. Pagination falls back to defaults in that case.
func intQuery(r *http.Request, name string) *int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
