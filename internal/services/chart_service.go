package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/vladimiradmaev/glucose-insights/internal/analysis"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
	"github.com/vladimiradmaev/glucose-insights/internal/metrics"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// ChartExtractor reads a glucose chart image and returns the model's text
type ChartExtractor interface {
	Extract(ctx context.Context, image []byte, format string) (string, error)
}

type GeminiChartExtractor struct {
	client *genai.Client
	model  string
}

func NewGeminiChartExtractor(ctx context.Context, apiKey, model string) (*GeminiChartExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiChartExtractor{client: client, model: model}, nil
}

func (e *GeminiChartExtractor) Close() error {
	return e.client.Close()
}

const chartPrompt = `You are reading a continuous glucose monitor or glucometer chart.

TASK:
1. Find every glucose reading visible in the image
2. Read its time of day and its value in mg/dL

CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a valid JSON object
- Do not include any explanatory text before or after the JSON
- Use 24-hour HH:MM times
- The JSON must have this exact shape:
  {
    "readings": [{"time": "07:30", "value": 142}]
  }
If no readings are visible return {"readings": []}`

// Extract sends the image with the chart prompt. format is the image
// subtype such as "jpeg" or "png".
func (e *GeminiChartExtractor) Extract(ctx context.Context, image []byte, format string) (string, error) {
	if format == "" {
		format = "jpeg"
	}
	model := e.client.GenerativeModel(e.model)
	resp, err := model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(chartPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return sb.String(), nil
}

// ChartAnalysis is the outcome of digitizing one chart
type ChartAnalysis struct {
	Source   string                  `json:"source"`
	Readings []domain.GlucoseReading `json:"readings"`
	Summary  analysis.ChartSummary   `json:"summary"`
}

type ChartService struct {
	extractor ChartExtractor
	store     domain.RecordStore
	metrics   *metrics.Collector
	log       *slog.Logger
	now       func() time.Time
}

// NewChartService accepts a nil extractor; Analyze then fails with an
// external API error
func NewChartService(extractor ChartExtractor, store domain.RecordStore, m *metrics.Collector, log *slog.Logger) *ChartService {
	if log == nil {
		log = slog.Default()
	}
	return &ChartService{
		extractor: extractor,
		store:     store,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

func (s *ChartService) Enabled() bool {
	return s.extractor != nil
}

// Analyze digitizes the chart, stores the readings as chart-derived and
// summarizes them. An image with no readings yields an empty summary
// carrying an error message, not an error.
func (s *ChartService) Analyze(ctx context.Context, sess domain.Session, image []byte, format string) (*ChartAnalysis, error) {
	if s.extractor == nil {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("chart digitization is not configured"), "gemini")
	}
	subject, err := s.store.GetSubject(ctx, sess.SubjectID)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, image, format)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "gemini")
	}

	points, source := parseChartText(text, s.now())
	readings := make([]domain.GlucoseReading, 0, len(points))
	for _, p := range points {
		reading := domain.GlucoseReading{
			SubjectID:       subject.ID,
			Timestamp:       p.at,
			Value:           p.value,
			MeasurementType: domain.MeasurementChartDerived,
			Notes:           chartNotes,
		}
		if err := s.store.InsertReading(ctx, &reading); err != nil {
			return nil, fmt.Errorf("failed to save chart reading: %w", err)
		}
		readings = append(readings, reading)
	}

	s.metrics.ObserveChart(source, len(readings))
	s.log.Info("Chart digitized", "subject_id", subject.ID, "source", source, "readings", len(readings))

	return &ChartAnalysis{
		Source:   source,
		Readings: readings,
		Summary:  analysis.SummarizeChart(readings, subject.TargetRange()),
	}, nil
}
