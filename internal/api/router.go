// Package api exposes the subject, tracking and analysis operations over
// HTTP. Every /subjects/{id} route acts as that subject.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
	"github.com/vladimiradmaev/glucose-insights/internal/interfaces"
	"github.com/vladimiradmaev/glucose-insights/internal/metrics"
)

// maxUploadBytes caps CSV and chart image bodies
const maxUploadBytes = 10 << 20

// Dependencies holds the services the router dispatches to. Chart and Chat
// may be nil.
type Dependencies struct {
	Subjects interfaces.SubjectServiceInterface
	Tracking interfaces.TrackingServiceInterface
	Analysis interfaces.AnalysisServiceInterface
	Import   interfaces.ImportServiceInterface
	Chart    interfaces.ChartServiceInterface
	Chat     interfaces.ChatServiceInterface
}

type Router struct {
	deps    Dependencies
	metrics *metrics.Collector
	log     *slog.Logger
	errors  *apperrors.Handler
}

func NewRouter(deps Dependencies, m *metrics.Collector, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{deps: deps, metrics: m, log: log, errors: apperrors.NewHandler(log)}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(rt.log, rt.metrics))

	router.Get("/healthz", rt.healthCheck)
	router.Handle("/metrics", rt.metrics.Handler())
	router.Get("/emergency", rt.emergency)

	router.Route("/subjects", func(r chi.Router) {
		r.Post("/", rt.createSubject)
		r.Route("/{subjectID}", func(r chi.Router) {
			r.Get("/", rt.getSubject)
			r.Post("/readings", rt.addReading)
			r.Post("/meals", rt.addMeal)
			r.Post("/insulin", rt.addInsulin)
			r.Post("/health", rt.addHealthStat)
			r.Post("/import", rt.importReadings)
			r.Post("/chart", rt.analyzeChart)
			r.Post("/chat", rt.chat)
			r.Get("/analysis", rt.analyze)
			r.Get("/summary", rt.summary)
			r.Get("/trend", rt.trend)
			r.Get("/recipes", rt.recipes)
			r.Get("/meal-plan", rt.mealPlan)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
