package usecase

import (
	"context"
	"errors"

	"contact-backend/internal/domain"
	"contact-backend/pkg/email"
	"contact-backend/pkg/logger"
	"contact-backend/pkg/security"
	"contact-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var allContactFields = []string{"name", "email", "subject", "message"}

// Notifier delivers notification emails.
type Notifier interface {
	Send(ctx context.Context, msg email.Message) error
}

type contactUsecase struct {
	repo     domain.ContactRepository
	reader   domain.ContactReader
	notifier Notifier
	mailbox  string
	validate *validator.Validate
	secLog   *security.SecurityLogger
}

// NewContactUsecase creates a new contact usecase. mailbox is both sender and
// recipient of notification emails.
func NewContactUsecase(
	repo domain.ContactRepository,
	reader domain.ContactReader,
	notifier Notifier,
	mailbox string,
	validate *validator.Validate,
	secLog *security.SecurityLogger,
) domain.ContactUsecase {
	if secLog == nil {
		secLog = security.Nop()
	}
	return &contactUsecase{
		repo:     repo,
		reader:   reader,
		notifier: notifier,
		mailbox:  mailbox,
		validate: validate,
		secLog:   secLog,
	}
}

// Submit runs validate, persist, notify in order. A saved record is never
// rolled back when the email fails.
func (uc *contactUsecase) Submit(ctx context.Context, req *domain.ContactRequest) (*domain.SubmissionResult, error) {
	if missing := uc.missingFields(ctx, req); len(missing) > 0 {
		logger.Log.Warn("Validation error: All fields are required", "missing_fields", missing)
		uc.secLog.LogValidationFailed(ctx, missing)
		return nil, &domain.ValidationError{Fields: missing}
	}

	// Once issued, the store write and the email run to completion even if
	// the client goes away.
	ctx = context.WithoutCancel(ctx)

	submission := &domain.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := uc.repo.Create(ctx, submission); err != nil {
		logger.Log.Error("Failed to save contact submission", "error", err)
		uc.secLog.LogPersistenceFailed(ctx, req.Email, err)
		return nil, &domain.PersistenceError{Err: err}
	}
	logger.Log.Info("Contact submission saved", "id", submission.ID)

	result := &domain.SubmissionResult{Saved: submission}
	if err := uc.notify(ctx, submission); err != nil {
		logger.Log.Error("Failed to send contact email", "id", submission.ID, "error", err)
		uc.secLog.LogNotificationFailed(ctx, submission.ID, err)
		result.NotifyErr = &domain.NotificationError{Err: err}
		return result, nil
	}
	logger.Log.Info("Contact email sent", "id", submission.ID, "to", uc.mailbox)

	return result, nil
}

func (uc *contactUsecase) missingFields(ctx context.Context, req *domain.ContactRequest) []string {
	if req == nil {
		return allContactFields
	}
	err := uc.validate.StructCtx(ctx, req)
	if err == nil {
		return nil
	}
	if missing := validation.MissingFields(err); len(missing) > 0 {
		return missing
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return allContactFields
	}
	return nil
}

func (uc *contactUsecase) notify(ctx context.Context, s *domain.ContactSubmission) error {
	msg, err := email.NewContactNotification(uc.mailbox, email.ContactEmailData{
		Name:    s.Name,
		Email:   s.Email,
		Subject: s.Subject,
		Message: s.Message,
	})
	if err != nil {
		return err
	}
	return uc.notifier.Send(ctx, msg)
}

// List returns stored submissions for the admin view, newest first.
func (uc *contactUsecase) List(ctx context.Context, opts domain.ContactListOptions) ([]*domain.ContactSubmission, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	items, err := uc.reader.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.ContactSubmission{}
	}
	return items, nil
}
