package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-insights/internal/bot/menus"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
	"github.com/vladimiradmaev/glucose-insights/internal/interfaces"
	"github.com/vladimiradmaev/glucose-insights/internal/metrics"
)

// maxFileBytes caps downloaded photos and documents
const maxFileBytes = 10 << 20

// Sender is the part of *tgbotapi.BotAPI the handlers use
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Downloader fetches a file by URL
type Downloader func(ctx context.Context, url string) ([]byte, error)

// Dependencies holds all service dependencies for handlers. Chart may be
// nil; Download defaults to a plain HTTP GET.
type Dependencies struct {
	Subjects interfaces.SubjectServiceInterface
	Tracking interfaces.TrackingServiceInterface
	Analysis interfaces.AnalysisServiceInterface
	Import   interfaces.ImportServiceInterface
	Chart    interfaces.ChartServiceInterface
	Chat     interfaces.ChatServiceInterface
	Metrics  *metrics.Collector
	Download Downloader
}

func (d Dependencies) chartEnabled() bool {
	return d.Chart != nil && d.Chart.Enabled()
}

// base carries what every handler needs
type base struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
	errors       *apperrors.Handler
}

func (b *base) send(msg tgbotapi.MessageConfig) error {
	_, err := b.api.Send(msg)
	return err
}

func (b *base) reply(chatID int64, text string) error {
	return b.send(menus.Text(chatID, text))
}

func (b *base) mainMenu(chatID int64) error {
	return b.send(menus.MainMenu(chatID, b.deps.chartEnabled()))
}

// replyError logs err by type and tells the user what went wrong
func (b *base) replyError(ctx context.Context, chatID int64, err error) error {
	b.errors.Handle(ctx, err)
	return b.reply(chatID, userMessage(err))
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return "Something went wrong. Please try again later."
	}
	switch appErr.Type {
	case apperrors.ErrorTypeValidation, apperrors.ErrorTypeNotFound, apperrors.ErrorTypeConflict:
		return "⚠️ " + appErr.Message
	case apperrors.ErrorTypeExternal:
		return "The image service is unavailable right now. Please try again in a few minutes."
	default:
		return "Something went wrong. Please try again later."
	}
}

// download fetches a telegram file through its direct URL
func (b *base) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	fetch := b.deps.Download
	if fetch == nil {
		fetch = httpDownload
	}
	return fetch(ctx, url)
}

func httpDownload(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFileBytes))
}
