package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

type SubjectService struct {
	store domain.RecordStore
	log   *slog.Logger
}

func NewSubjectService(store domain.RecordStore, log *slog.Logger) *SubjectService {
	if log == nil {
		log = slog.Default()
	}
	return &SubjectService{
		store: store,
		log:   log,
	}
}

// Register creates the subject and opens a session for it. Name collisions
// are rejected with ErrSubjectExists.
func (s *SubjectService) Register(ctx context.Context, subject *domain.Subject) (*domain.Session, error) {
	if err := domain.ValidateSubject(subject); err != nil {
		return nil, err
	}
	if err := s.store.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	s.log.Info("Subject registered", "subject_id", subject.ID, "name", subject.Name)
	return newSession(subject.ID), nil
}

// Login opens a session for an existing subject by name
func (s *SubjectService) Login(ctx context.Context, name string) (*domain.Session, error) {
	subject, err := s.store.FindSubjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return newSession(subject.ID), nil
}

// LoginOrRegister returns a session for name, creating a bare subject on
// first use
func (s *SubjectService) LoginOrRegister(ctx context.Context, name string) (*domain.Session, error) {
	sess, err := s.Login(ctx, name)
	if err == nil {
		return sess, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return s.Register(ctx, &domain.Subject{Name: name})
}

func (s *SubjectService) Get(ctx context.Context, id uint) (*domain.Subject, error) {
	subject, err := s.store.GetSubject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}

func (s *SubjectService) NextID(ctx context.Context) (uint, error) {
	return s.store.NextSubjectID(ctx)
}

func newSession(subjectID uint) *domain.Session {
	return &domain.Session{
		SubjectID: subjectID,
		Token:     uuid.NewString(),
	}
}

func isNotFound(err error) bool {
	return apperrors.TypeOf(err) == apperrors.ErrorTypeNotFound
}
