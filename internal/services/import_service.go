package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/metrics"
	"github.com/vladimiradmaev/glucose-insights/internal/utils"
)

// RowError describes one skipped import row
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportReport is the partial-success outcome of an import
type ImportReport struct {
	BatchID  string     `json:"batch_id"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

func (r *ImportReport) skip(line int, reason string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Line: line, Reason: reason})
}

// ImportService loads readings from CSV exports with columns
// timestamp,value[,measurement_type[,notes]]
type ImportService struct {
	store    domain.RecordStore
	metrics  *metrics.Collector
	log      *slog.Logger
	location *time.Location
}

func NewImportService(store domain.RecordStore, m *metrics.Collector, log *slog.Logger) *ImportService {
	if log == nil {
		log = slog.Default()
	}
	return &ImportService{
		store:    store,
		metrics:  m,
		log:      log,
		location: time.UTC,
	}
}

// ImportReadings validates and commits each row on its own. Bad rows are
// skipped and reported. A store failure stops the import and returns the
// report so far with the error; rows already committed stay committed.
func (s *ImportService) ImportReadings(ctx context.Context, sess domain.Session, r io.Reader) (*ImportReport, error) {
	report := &ImportReport{
		BatchID: uuid.NewString(),
		Errors:  []RowError{},
	}
	if _, err := s.store.GetSubject(ctx, sess.SubjectID); err != nil {
		return report, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				report.skip(perr.Line, perr.Err.Error())
				continue
			}
			return s.finish(sess, report), fmt.Errorf("failed to read import: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}

		reading, reason := s.parseRow(record)
		if reason != "" {
			report.skip(line, reason)
			continue
		}
		reading.SubjectID = sess.SubjectID
		if err := domain.ValidateReading(reading); err != nil {
			report.skip(line, err.Error())
			continue
		}
		if err := s.store.InsertReading(ctx, reading); err != nil {
			return s.finish(sess, report), fmt.Errorf("import aborted at line %d: %w", line, err)
		}
		report.Imported++
	}
	return s.finish(sess, report), nil
}

func (s *ImportService) finish(sess domain.Session, report *ImportReport) *ImportReport {
	s.metrics.ObserveImport(report.Imported, report.Skipped)
	s.log.Info("Import finished",
		"subject_id", sess.SubjectID,
		"batch_id", report.BatchID,
		"imported", report.Imported,
		"skipped", report.Skipped)
	return report
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "timestamp")
}

func (s *ImportService) parseRow(record []string) (*domain.GlucoseReading, string) {
	if len(record) < 2 {
		return nil, fmt.Sprintf("expected at least 2 columns, got %d", len(record))
	}
	ts, err := utils.ParseTimestamp(record[0], s.location)
	if err != nil {
		return nil, err.Error()
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return nil, fmt.Sprintf("invalid value %q", record[1])
	}

	reading := &domain.GlucoseReading{
		Timestamp:       ts,
		Value:           value,
		MeasurementType: domain.MeasurementImported,
	}
	if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
		reading.MeasurementType = strings.TrimSpace(record[2])
	}
	if len(record) > 3 {
		reading.Notes = strings.TrimSpace(record[3])
	}
	return reading, ""
}
