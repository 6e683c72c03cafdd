package api

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
	"github.com/vladimiradmaev/glucose-insights/internal/nutrition"
	"github.com/vladimiradmaev/glucose-insights/internal/services"
	"github.com/vladimiradmaev/glucose-insights/internal/utils"
)

var errChartDisabled = errors.New("chart digitization is not configured")

type readingRequest struct {
	Value           float64   `json:"value"`
	MeasurementType string    `json:"measurement_type"`
	Notes           string    `json:"notes"`
	Timestamp       time.Time `json:"timestamp"`
}

type mealRequest struct {
	MealType  string              `json:"meal_type"`
	Items     []nutrition.Portion `json:"items"`
	Notes     string              `json:"notes"`
	Timestamp time.Time           `json:"timestamp"`
}

type chatRequest struct {
	Message string `json:"message"`
}

// session resolves the {subjectID} path parameter
func session(r *http.Request) (domain.Session, error) {
	raw := chi.URLParam(r, "subjectID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return domain.Session{}, apperrors.NewValidationError("invalid subject id " + strconv.Quote(raw))
	}
	return domain.Session{SubjectID: uint(id)}, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(key + " must be an integer")
	}
	return v, nil
}

func queryFloat(r *http.Request, key string) (float64, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, apperrors.NewValidationError(key + " must be a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, apperrors.NewValidationError(key + " must be a finite number")
	}
	return v, true, nil
}

func (rt *Router) createSubject(w http.ResponseWriter, r *http.Request) {
	var subject domain.Subject
	if err := decodeJSON(r, &subject); err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	sess, err := rt.deps.Subjects.Register(r.Context(), &subject)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"subject": subject,
		"session": sess,
	})
}

func (rt *Router) getSubject(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	subject, err := rt.deps.Subjects.Get(r.Context(), sess.SubjectID)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (rt *Router) addReading(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	var req readingRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	reading, err := rt.deps.Tracking.AddReading(r.Context(), sess, req.Value, req.MeasurementType, req.Notes, req.Timestamp)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

func (rt *Router) addMeal(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	var req mealRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	meal, err := rt.deps.Tracking.AddMeal(r.Context(), sess, req.MealType, req.Items, req.Notes, req.Timestamp)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

func (rt *Router) addInsulin(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	var dose domain.InsulinDose
	if err := decodeJSON(r, &dose); err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	saved, err := rt.deps.Tracking.AddInsulinDose(r.Context(), sess, dose)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (rt *Router) addHealthStat(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	var stat domain.HealthStat
	if err := decodeJSON(r, &stat); err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	saved, err := rt.deps.Tracking.AddHealthStat(r.Context(), sess, stat)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (rt *Router) importReadings(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	report, err := rt.deps.Import.ImportReadings(r.Context(), sess, http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		// the partial report still tells the caller what was committed
		if report != nil {
			rt.writeError(w, r, err, report)
		} else {
			rt.writeError(w, r, err, nil)
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) analyzeChart(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	if rt.deps.Chart == nil || !rt.deps.Chart.Enabled() {
		rt.writeError(w, r, apperrors.NewExternalAPIError(errChartDisabled, "gemini"), nil)
		return
	}
	image, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		rt.writeError(w, r, apperrors.NewValidationError("failed to read image body"), nil)
		return
	}
	if len(image) == 0 {
		rt.writeError(w, r, apperrors.NewValidationError("empty image body"), nil)
		return
	}
	result, err := rt.deps.Chart.Analyze(r.Context(), sess, image, imageFormat(r.Header.Get("Content-Type")))
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// imageFormat turns "image/png" into "png", defaulting to jpeg
func imageFormat(contentType string) string {
	if sub, ok := strings.CutPrefix(contentType, "image/"); ok && sub != "" {
		if i := strings.IndexByte(sub, ';'); i >= 0 {
			sub = sub[:i]
		}
		return strings.TrimSpace(sub)
	}
	return "jpeg"
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	if rt.deps.Chat == nil {
		http.NotFound(w, r)
		return
	}
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		rt.writeError(w, r, apperrors.NewValidationError("message is required"), nil)
		return
	}
	msg, err := rt.deps.Chat.Reply(r.Context(), sess, req.Message)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	days, err := queryInt(r, "days")
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	result, err := rt.deps.Analysis.Analyze(r.Context(), sess, days)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) summary(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		if day, err = utils.ParseDay(raw, time.UTC); err != nil {
			rt.writeError(w, r, apperrors.NewValidationError("date must be YYYY-MM-DD"), nil)
			return
		}
	}
	summary, err := rt.deps.Analysis.DailySummary(r.Context(), sess, day)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (rt *Router) trend(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	prediction, err := rt.deps.Analysis.PredictTrend(r.Context(), sess)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (rt *Router) recipes(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	maxCarbs, _, err := queryFloat(r, "max_carbs")
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	recs, err := rt.deps.Analysis.RecommendRecipes(r.Context(), sess, services.RecipeQuery{
		MealType: r.URL.Query().Get("meal_type"),
		MaxCarbs: maxCarbs,
	})
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (rt *Router) mealPlan(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	days, err := queryInt(r, "days")
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	plan, err := rt.deps.Analysis.MealPlan(r.Context(), sess, days)
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (rt *Router) emergency(w http.ResponseWriter, r *http.Request) {
	value, ok, err := queryFloat(r, "value")
	if err == nil && !ok {
		err = apperrors.NewValidationError("value is required")
	}
	if err != nil {
		rt.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, rt.deps.Analysis.Emergency(value))
}
