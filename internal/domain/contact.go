package domain

import (
	"context"
	"time"
)

// ContactRequest represents a contact form submission as received over HTTP.
// Fields are checked by the usecase, not by gin binding, so that a missing
// field and an empty one produce the same response.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// ContactSubmission is a persisted contact form submission.
type ContactSubmission struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ContactListOptions carries pagination for the admin listing.
type ContactListOptions struct {
	Limit  int
	Offset int
}

// SubmissionResult reports the outcome of a submission that reached the store.
// NotifyErr is non-nil when the record was saved but the email was not sent.
type SubmissionResult struct {
	Saved     *ContactSubmission
	NotifyErr error
}

// Notified reports whether the notification email went out.
func (r *SubmissionResult) Notified() bool {
	return r.NotifyErr == nil
}

// ContactRepository is the create-only record store used by the submission workflow.
type ContactRepository interface {
	// Create inserts the submission and fills in its ID and CreatedAt.
	Create(ctx context.Context, submission *ContactSubmission) error
}

// ContactReader lists stored submissions for the admin view.
type ContactReader interface {
	List(ctx context.Context, opts ContactListOptions) ([]*ContactSubmission, error)
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Submit validates, persists and relays a submission. A returned error is
	// either a *ValidationError or a *PersistenceError; a failed notification
	// is reported through SubmissionResult.NotifyErr instead.
	Submit(ctx context.Context, req *ContactRequest) (*SubmissionResult, error)

	// List returns stored submissions, newest first.
	List(ctx context.Context, opts ContactListOptions) ([]*ContactSubmission, error)
}
