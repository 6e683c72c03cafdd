package handlers

import (
	"context"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glucose-insights/internal/bot/keyboards"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/menus"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
	"github.com/vladimiradmaev/glucose-insights/internal/metrics"
	"github.com/vladimiradmaev/glucose-insights/internal/repository"
	"github.com/vladimiradmaev/glucose-insights/internal/services"
)

const (
	testUser = int64(42)
	testChat = int64(4242)
)

type fakeSender struct {
	sent      []tgbotapi.MessageConfig
	requests  []tgbotapi.Chattable
	nextMsgID int
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, msg)
	}
	s.nextMsgID++
	return tgbotapi.Message{MessageID: s.nextMsgID}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.requests = append(s.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.test/" + fileID, nil
}

func (s *fakeSender) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.sent)
	return s.sent[len(s.sent)-1].Text
}

type chartText string

func (c chartText) Extract(context.Context, []byte, string) (string, error) {
	return string(c), nil
}

type fixture struct {
	sender  *fakeSender
	states  *state.Manager
	store   *repository.MemoryStore
	metrics *metrics.Collector
	handler *UpdateHandler
	files   map[string][]byte
}

func newFixture(t *testing.T, extractor services.ChartExtractor) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	m := metrics.NewCollector()
	analysisSvc := services.NewAnalysisService(store, services.AnalysisOptions{Metrics: m}, nil)

	f := &fixture{
		sender:  &fakeSender{},
		states:  state.NewManager(),
		store:   store,
		metrics: m,
		files:   map[string][]byte{},
	}
	deps := Dependencies{
		Subjects: services.NewSubjectService(store, nil),
		Tracking: services.NewTrackingService(store, nil),
		Analysis: analysisSvc,
		Import:   services.NewImportService(store, m, nil),
		Chart:    services.NewChartService(extractor, store, m, nil),
		Chat:     services.NewChatService(analysisSvc, store, nil),
		Metrics:  m,
		Download: func(_ context.Context, url string) ([]byte, error) {
			data, ok := f.files[url]
			if !ok {
				return nil, fmt.Errorf("no file at %s", url)
			}
			return data, nil
		},
	}
	f.handler = NewUpdateHandler(f.sender, deps, f.states)
	return f
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: testUser},
		Chat:      &tgbotapi.Chat{ID: testChat},
		Text:      text,
	}
}

func command(text string) tgbotapi.Update {
	msg := message(text)
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	return tgbotapi.Update{Message: msg}
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: testUser},
		Message: message(""),
		Data:    data,
	}}
}

func (f *fixture) handle(t *testing.T, update tgbotapi.Update) {
	t.Helper()
	require.NoError(t, f.handler.Handle(context.Background(), update))
}

func (f *fixture) subjectID(t *testing.T) uint {
	t.Helper()
	sess, ok := f.states.GetSession(testUser)
	require.True(t, ok)
	return sess.SubjectID
}

func (f *fixture) readings(t *testing.T) []domain.GlucoseReading {
	t.Helper()
	readings, err := f.store.QueryReadings(context.Background(), f.subjectID(t), domain.TimeWindow{})
	require.NoError(t, err)
	return readings
}

func TestHandle_StartRegistersSubject(t *testing.T) {
	f := newFixture(t, nil)

	f.handle(t, command("/start"))
	subjectID := f.subjectID(t)
	subject, err := f.store.FindSubjectByName(context.Background(), SubjectName(testUser))
	require.NoError(t, err)
	assert.Equal(t, subjectID, subject.ID)

	menu := f.sender.sent[0]
	assert.Equal(t, testChat, menu.ChatID)
	assert.NotNil(t, menu.ReplyMarkup)

	// A second update reuses the cached session
	f.handle(t, command("/help"))
	assert.Equal(t, subjectID, f.subjectID(t))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.BotUpdates.WithLabelValues(UpdateCommand)))
}

func TestHandle_IgnoresUpdatesWithoutUser(t *testing.T) {
	f := newFixture(t, nil)
	f.handle(t, tgbotapi.Update{})
	assert.Empty(t, f.sender.sent)
}

func TestHandle_LogReadingFlow(t *testing.T) {
	f := newFixture(t, nil)

	f.handle(t, callback(keyboards.LogReading))
	require.Len(t, f.sender.requests, 1)
	assert.Equal(t, state.WaitingForReading, f.states.GetUserState(testUser))

	f.handle(t, tgbotapi.Update{Message: message("abc")})
	assert.Contains(t, f.sender.last(t), "Please enter a number")
	assert.Equal(t, state.WaitingForReading, f.states.GetUserState(testUser))

	f.handle(t, tgbotapi.Update{Message: message("700")})
	assert.Contains(t, f.sender.last(t), "⚠️")
	assert.Empty(t, f.readings(t))

	f.handle(t, tgbotapi.Update{Message: message("123,5")})
	assert.Contains(t, f.sender.last(t), "Reading 124 mg/dL saved")
	assert.Equal(t, state.None, f.states.GetUserState(testUser))

	readings := f.readings(t)
	require.Len(t, readings, 1)
	assert.Equal(t, 123.5, readings[0].Value)
	assert.Equal(t, domain.MeasurementManual, readings[0].MeasurementType)
}

func TestHandle_Commands(t *testing.T) {
	f := newFixture(t, nil)
	for _, v := range []string{"100", "110", "120"} {
		f.handle(t, callback(keyboards.LogReading))
		f.handle(t, tgbotapi.Update{Message: message(v)})
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"analyze", "/analyze 7", "Analysis"},
		{"analyze bad days", "/analyze soon", "Usage: /analyze"},
		{"recipes bad args", "/recipes salad soup", "Usage: /recipes"},
		{"emergency usage", "/emergency", "Usage: /emergency"},
		{"emergency not a number", "/emergency low", "Please enter a number"},
		{"emergency NaN", "/emergency NaN", "Please enter a number"},
		{"emergency infinite", "/emergency +Inf", "Please enter a number"},
		{"recipes NaN carbs", "/recipes NaN", "Usage: /recipes"},
		{"unknown", "/dance", "Unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.handle(t, command(tt.text))
			assert.Contains(t, f.sender.last(t), tt.want)
		})
	}

	f.handle(t, command("/emergency 50"))
	assert.Equal(t, menus.FormatGuidance(f.handler.deps.Analysis.Emergency(50)), f.sender.last(t))
}

func TestParseRecipeArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want services.RecipeQuery
		ok   bool
	}{
		{"empty", nil, services.RecipeQuery{}, true},
		{"meal only", []string{"salad"}, services.RecipeQuery{MealType: "salad"}, true},
		{"carbs first", []string{"20", "salad"}, services.RecipeQuery{MealType: "salad", MaxCarbs: 20}, true},
		{"two meals", []string{"salad", "soup"}, services.RecipeQuery{}, false},
		{"negative carbs", []string{"-5"}, services.RecipeQuery{}, false},
		{"NaN carbs", []string{"salad", "NaN"}, services.RecipeQuery{}, false},
		{"infinite carbs", []string{"Inf"}, services.RecipeQuery{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRecipeArgs(tt.args)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHandle_TextChats(t *testing.T) {
	f := newFixture(t, nil)

	f.handle(t, tgbotapi.Update{Message: message("any exercise tips?")})
	assert.Contains(t, f.sender.last(t), "exercise")

	history, err := f.store.QueryChatMessages(context.Background(), f.subjectID(t), domain.TimeWindow{})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHandle_DocumentImport(t *testing.T) {
	f := newFixture(t, nil)
	f.files["https://files.test/doc1"] = []byte("timestamp,value\n2024-03-01 08:00,120\n2024-03-01 09:00,abc\n")

	f.handle(t, callback(keyboards.Import))
	assert.Equal(t, state.WaitingForImport, f.states.GetUserState(testUser))

	msg := message("")
	msg.Document = &tgbotapi.Document{FileID: "doc1", FileName: "export.CSV"}
	f.handle(t, tgbotapi.Update{Message: msg})

	text := f.sender.last(t)
	assert.Contains(t, text, "Imported 1 readings, skipped 1")
	assert.Contains(t, text, "line 3")
	assert.Equal(t, state.None, f.states.GetUserState(testUser))
	assert.Len(t, f.readings(t), 1)

	msg = message("")
	msg.Document = &tgbotapi.Document{FileID: "doc2", FileName: "notes.pdf", MimeType: "application/pdf"}
	f.handle(t, tgbotapi.Update{Message: msg})
	assert.Equal(t, "Only CSV files can be imported.", f.sender.last(t))
}

func TestHandle_PhotoDisabled(t *testing.T) {
	f := newFixture(t, nil)

	msg := message("")
	msg.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}
	f.handle(t, tgbotapi.Update{Message: msg})
	assert.Equal(t, "Chart reading is not configured on this bot.", f.sender.last(t))
}

func TestHandle_PhotoChart(t *testing.T) {
	f := newFixture(t, chartText(`{"readings":[{"time":"08:00","value":150},{"time":"09:00","value":160}]}`))
	f.files["https://files.test/large"] = []byte("png")

	f.handle(t, callback(keyboards.Chart))
	assert.Equal(t, state.WaitingForChart, f.states.GetUserState(testUser))

	msg := message("")
	msg.Photo = []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}
	f.handle(t, tgbotapi.Update{Message: msg})

	assert.Contains(t, f.sender.last(t), "Time in range")
	assert.Equal(t, state.None, f.states.GetUserState(testUser))

	readings := f.readings(t)
	require.Len(t, readings, 2)
	assert.Equal(t, domain.MeasurementChartDerived, readings[0].MeasurementType)

	// callback answer, processing message deletion
	assert.Len(t, f.sender.requests, 2)
}

func TestHandle_PhotoDownloadFails(t *testing.T) {
	f := newFixture(t, chartText("120 mg/dL"))

	msg := message("")
	msg.Photo = []tgbotapi.PhotoSize{{FileID: "missing"}}
	f.handle(t, tgbotapi.Update{Message: msg})
	assert.Contains(t, f.sender.last(t), "couldn't download")
}

func TestHandle_MainMenuCallbackResetsState(t *testing.T) {
	f := newFixture(t, nil)
	f.states.SetUserState(testUser, state.WaitingForReading)

	f.handle(t, callback(keyboards.MainMenu))
	assert.Equal(t, state.None, f.states.GetUserState(testUser))
	assert.NotNil(t, f.sender.sent[len(f.sender.sent)-1].ReplyMarkup)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Something went wrong. Please try again later.", userMessage(fmt.Errorf("boom")))
	assert.Equal(t, "⚠️ Subject not found", userMessage(apperrors.ErrSubjectNotFound))
	assert.Contains(t, userMessage(apperrors.NewExternalAPIError(fmt.Errorf("quota"), "gemini")), "unavailable")
}
