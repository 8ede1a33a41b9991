// Package handler implements the HTTP layer for the taxi fleet API.
// Handlers decode and validate request shapes, call the service, and map
// domain errors to HTTP statuses. All handlers are methods on Server; routes
// are registered by Server.Routes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cabfleet/taxi-api/internal/domain"
	"github.com/cabfleet/taxi-api/spec"
)

// TaxiServicer defines the business operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TaxiServicer interface {
	Create(ctx context.Context, taxi domain.Taxi) (domain.Taxi, error)
	InsertMany(ctx context.Context, taxis []domain.Taxi) ([]domain.Taxi, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Taxi, error)
	List(ctx context.Context, filter domain.TaxiFilter, page domain.PaginationParams) ([]domain.Taxi, error)
	Count(ctx context.Context, filter domain.TaxiFilter) (int64, error)
	Update(ctx context.Context, id uuid.UUID, taxi domain.Taxi) (domain.Taxi, error)
	Remove(ctx context.Context, id uuid.UUID) error

	AssignDriver(ctx context.Context, id uuid.UUID, driverID string) (domain.Taxi, error)
	RegisterTrip(ctx context.Context, id uuid.UUID, distance float64) (domain.Taxi, error)
	UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64) (domain.Taxi, error)
	FindNearby(ctx context.Context, lat, lon float64, distanceKm int) ([]domain.Taxi, error)
}

// Server holds the handler dependencies.
type Server struct {
	taxis TaxiServicer
	log   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(taxis TaxiServicer, log *slog.Logger) *Server {
	return &Server{taxis: taxis, log: log}
}

// Routes registers every endpoint on r. Static segments (/count, /bulk,
// /position/findNearby, /healthz) are registered alongside the /{id} routes;
// chi matches static paths before wildcards, so they never shadow each other.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/", s.ListTaxis)
	r.Post("/", s.CreateTaxi)
	r.Get("/count", s.CountTaxis)
	r.Post("/bulk", s.InsertTaxis)
	r.Get("/{id}", s.GetTaxi)
	r.Put("/{id}", s.UpdateTaxi)
	r.Delete("/{id}", s.RemoveTaxi)

	r.Put("/{id}/idDriver/assign", s.AssignDriver)
	r.Put("/{id}/trip/register", s.RegisterTrip)
	r.Put("/{id}/position/update", s.UpdatePosition)
	r.Post("/position/findNearby", s.FindTaxisNearby)
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// GetOpenAPI serves the embedded OpenAPI document.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
