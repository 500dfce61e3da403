package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Charbel-5/moondev-coding-challenge/internal/app"
	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/middleware"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/response"
)

var phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)

type SubmissionHandler struct {
	submissions *app.SubmissionService
	limiter     middleware.Limiter
	validate    *validator.Validate
}

func NewSubmissionHandler(submissions *app.SubmissionService, limiter middleware.Limiter) *SubmissionHandler {
	validate := validator.New()
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return &SubmissionHandler{submissions: submissions, limiter: limiter, validate: validate}
}

type submitRequest struct {
	FullName       string  `json:"full_name" validate:"required,min=2,max=100"`
	Phone          string  `json:"phone" validate:"required,phone"`
	Location       string  `json:"location" validate:"required,min=2,max=100"`
	Email          string  `json:"email" validate:"required,email"`
	Hobbies        string  `json:"hobbies" validate:"required,min=20,max=1000"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	SourceCode     *string `json:"source_code,omitempty"`
}

// Submit handles the applicant's form: first call creates, later calls
// update the same record.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(w, validationError(err))
		return
	}
	if h.limiter != nil {
		key := "submit:" + actor.UserID.String()
		if !h.limiter.Allow(key, 5, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "submit rate limit exceeded", nil))
			return
		}
	}
	patch := submission.OwnerPatch{
		FullName:       &req.FullName,
		Phone:          &req.Phone,
		Location:       &req.Location,
		Email:          &req.Email,
		Hobbies:        &req.Hobbies,
		ProfilePicture: req.ProfilePicture,
		SourceCode:     req.SourceCode,
	}
	saved, created, err := h.submissions.Submit(r.Context(), actor, patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(w, status, saved)
}

type updateResponse struct {
	Submission *submission.Submission `json:"submission"`
	Notified   bool                   `json:"notified"`
	Warning    string                 `json:"warning,omitempty"`
}

// Update applies a role-scoped patch to one submission. A failed
// notification does not fail the request: the write is durable and the
// response says so.
func (h *SubmissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var patch app.Patch
	if err := decodeJSON(r, &patch); err != nil {
		response.Error(w, err)
		return
	}
	out, err := h.submissions.Update(r.Context(), actor, id, patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	body := updateResponse{Submission: out.Submission, Notified: out.Notified}
	if out.NotifyErr != nil {
		body.Warning = "decision saved but the applicant could not be notified"
	}
	response.JSON(w, http.StatusOK, body)
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.submissions.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.Error(w, err)
		return
	}
	if items == nil {
		items = []submission.Submission{}
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	sub, err := h.submissions.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	if !actor.IsReviewer() && sub.OwnerID != actor.UserID {
		response.Error(w, common.NewError(common.CodeForbidden, "submission belongs to another applicant", nil))
		return
	}
	response.JSON(w, http.StatusOK, sub)
}

// GetMine returns the caller's own submission.
func (h *SubmissionHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	sub, err := h.submissions.GetByOwner(r.Context(), actor.UserID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sub)
}

func validationError(err error) error {
	fields := make(map[string]string)
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		for _, fieldErr := range invalid {
			fields[fieldErr.Field()] = "failed " + fieldErr.Tag() + " validation"
		}
	}
	return common.NewValidationError("invalid request", fields)
}
