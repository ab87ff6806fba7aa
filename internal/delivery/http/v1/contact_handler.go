package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"contact-backend/internal/delivery/http/response"
	"contact-backend/internal/domain"
	"contact-backend/pkg/apperror"
	"contact-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	msgFieldsRequired = "All fields are required"
	msgInvalidBody    = "Invalid request body"
	msgSaveFailed     = "Failed to save message to database"
	msgSavedAndSent   = "Message saved and email sent successfully"
	msgSavedNotSent   = "Message saved to database, but failed to send email"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// SavedData echoes a stored submission when its email could not be sent.
type SavedData struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// NewContactHandler registers the public submission route and, when admin is
// non-nil, the admin listing. submitMiddleware runs before submissions only.
func NewContactHandler(public, admin *gin.RouterGroup, contactUC domain.ContactUsecase, submitMiddleware ...gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/contact", append(submitMiddleware, handler.SubmitContact)...)

	if admin != nil {
		admin.GET("/contacts", handler.ListContacts)
	}
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Saves the message, then emails it to the site mailbox. A failed email still returns 201 with the saved record.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      201      {object}  response.PartialResponse  "savedData and error are set when the email failed"
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      500      {object}  response.FailureResponse
// @Router       /api/contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	// An empty body is treated as a request with every field missing.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.BadRequest(msgInvalidBody, err))
		return
	}

	result, err := h.contactUC.Submit(c.Request.Context(), &req)
	if err != nil {
		var validationErr *domain.ValidationError
		var persistenceErr *domain.PersistenceError
		switch {
		case errors.As(err, &validationErr):
			c.Error(apperror.BadRequest(msgFieldsRequired, nil))
		case errors.As(err, &persistenceErr):
			c.Error(apperror.Internal(msgSaveFailed, persistenceErr.Err))
		default:
			c.Error(err)
		}
		return
	}

	if !result.Notified() {
		saved := result.Saved
		response.Partial(c, http.StatusCreated, msgSavedNotSent, result.NotifyErr.Error(), SavedData{
			ID:      saved.ID,
			Name:    saved.Name,
			Email:   saved.Email,
			Subject: saved.Subject,
			Message: saved.Message,
		})
		return
	}

	response.Success(c, http.StatusCreated, msgSavedAndSent)
}

// ListContacts godoc
// @Summary      List Contact Submissions
// @Description  Returns stored submissions, newest first. Requires an admin bearer token.
// @Tags         admin
// @Produce      json
// @Param        limit   query     int  false  "Page size (1-100, default 20)"
// @Param        offset  query     int  false  "Rows to skip"
// @Success      200     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      500     {object}  response.Response
// @Security     BearerAuth
// @Router       /api/admin/contacts [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	opts := domain.ContactListOptions{}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil {
		opts.Limit = l
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil {
		opts.Offset = o
	}

	items, err := h.contactUC.List(c.Request.Context(), opts)
	if err != nil {
		c.Error(apperror.Internal("Failed to list contact submissions", err))
		return
	}

	logger.Log.Info("Admin listed contact submissions",
		"admin", c.GetString(string(domain.KeyAdminSubject)),
		"count", len(items),
	)
	response.SuccessWithData(c, http.StatusOK, "Contact submissions retrieved", items)
}
