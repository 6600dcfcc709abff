// internal/app/features/intake/handler.go
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/store/submissions"
	"github.com/dalemusser/applyhub/internal/app/system/auditlog"
	"github.com/dalemusser/applyhub/internal/app/system/normalize"
	"github.com/dalemusser/applyhub/internal/app/system/timeouts"
	"github.com/dalemusser/applyhub/internal/app/system/webutil"
	"github.com/dalemusser/applyhub/internal/domain/models"
)

// Handler accepts public application submissions.
type Handler struct {
	Store *submissions.Store
	Audit *auditlog.Logger
	Errs  *webutil.ErrorLogger
	Log   *zap.Logger

	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

// NewHandler constructs an intake Handler.
func NewHandler(store *submissions.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:     store,
		Audit:     audit,
		Errs:      webutil.NewErrorLogger(logger),
		Log:       logger,
		validate:  validator.New(),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// submitRequest is the JSON body of POST /api/submit. Field names mirror
// the public application form.
type submitRequest struct {
	FullName    string   `json:"fullName" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	CountryCode string   `json:"countryCode"`
	Phone       string   `json:"phone" validate:"required"`
	DOB         string   `json:"dob" validate:"required"`
	Grade       string   `json:"grade" validate:"required"`
	IsBhStudent string   `json:"isBhStudent" validate:"required,oneof=yes no"`
	BhBranch    string   `json:"bhBranch"`
	Section     string   `json:"section"`
	City        string   `json:"city"`
	School      string   `json:"school"`
	Country     string   `json:"country"`
	Subjects    []string `json:"subjects" validate:"required,min=1"`
	Category    string   `json:"category"`
	Motivation  string   `json:"motivation" validate:"required,min=50"`

	WhyChosenSubjects string `json:"whyChosenSubjects"`
	HeardAbout        string `json:"heardAbout"`
	Social            string `json:"social"`
	PrevCompetitions  string `json:"prevCompetitions"`
	Skills            string `json:"skills"`
	Ideas             string `json:"ideas"`
}

// Submit handles POST /api/submit.
//
// On success: 200 and {"success":true,"id":"<hex>"}.
// On validation failure: 400 with a field-specific message.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webutil.Fail(w, http.StatusBadRequest, "All required fields must be filled")
		return
	}

	// Sanitize before validating so the checks run against what will
	// actually be stored: markup-only subjects or motivation must not
	// slip past the minimums.
	req = h.sanitized(req)

	if msg := h.validationMessage(req); msg != "" {
		webutil.Fail(w, http.StatusBadRequest, msg)
		return
	}

	sub := toSubmission(req)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := h.Store.Insert(ctx, sub)
	if err != nil {
		h.Errs.ServerError(w, r, "insert submission", err, "Database error")
		return
	}

	h.Audit.SubmissionReceived(ctx, r, id.Hex(), sub.Email)
	h.Log.Info("new submission",
		zap.String("id", id.Hex()),
		zap.String("email", sub.Email))

	webutil.JSON(w, http.StatusOK, map[string]any{"success": true, "id": id.Hex()})
}

// validationMessage returns the message for the first failed check, in the
// same order the application form reports them, or "" when the request is
// valid.
func (h *Handler) validationMessage(req submitRequest) string {
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return "All required fields must be filled"
		}
		for _, fe := range verrs {
			switch fe.StructField() {
			case "FullName", "Phone", "DOB", "Grade", "IsBhStudent":
				return "All required fields must be filled"
			case "Email":
				if fe.Tag() == "required" {
					return "All required fields must be filled"
				}
				return "Invalid email address"
			case "Subjects":
				return "Please select at least one subject"
			case "Motivation":
				return "Motivation must be at least 50 characters long"
			}
		}
		return "All required fields must be filled"
	}

	if req.IsBhStudent == "yes" && req.Section == "" {
		return "Section is required for BH students"
	}
	if req.IsBhStudent == "no" && (req.Country == "" || req.School == "") {
		return "Country and School are required for non-BH students"
	}
	return ""
}

// sanitized returns a copy of the request with every free-text field
// stripped of markup and trimmed, and markup-only subjects removed. Runs
// before validation.
func (h *Handler) sanitized(req submitRequest) submitRequest {
	clean := func(s string) string {
		return strings.TrimSpace(h.sanitizer.Sanitize(s))
	}

	subjects := make([]string, 0, len(req.Subjects))
	for _, s := range req.Subjects {
		if c := clean(s); c != "" {
			subjects = append(subjects, c)
		}
	}
	req.Subjects = subjects

	req.FullName = normalize.Name(clean(req.FullName))
	req.Email = strings.TrimSpace(req.Email)
	req.CountryCode = clean(req.CountryCode)
	req.Phone = clean(req.Phone)
	req.DOB = clean(req.DOB)
	req.Grade = clean(req.Grade)
	req.IsBhStudent = clean(req.IsBhStudent)
	req.BhBranch = clean(req.BhBranch)
	req.Section = clean(req.Section)
	req.City = clean(req.City)
	req.School = clean(req.School)
	req.Country = clean(req.Country)
	req.Category = clean(req.Category)
	req.Motivation = clean(req.Motivation)
	req.WhyChosenSubjects = clean(req.WhyChosenSubjects)
	req.HeardAbout = clean(req.HeardAbout)
	req.Social = clean(req.Social)
	req.PrevCompetitions = clean(req.PrevCompetitions)
	req.Skills = clean(req.Skills)
	req.Ideas = clean(req.Ideas)

	return req
}

// toSubmission maps an already-sanitized request onto the stored model.
func toSubmission(req submitRequest) *models.Submission {
	return &models.Submission{
		FullName:    req.FullName,
		Email:       normalize.Email(req.Email),
		CountryCode: req.CountryCode,
		Phone:       req.Phone,
		DOB:         req.DOB,
		Grade:       req.Grade,
		IsBhStudent: req.IsBhStudent == "yes",
		BhBranch:    req.BhBranch,
		Section:     req.Section,
		City:        req.City,
		School:      req.School,
		Country:     req.Country,
		Subjects:    req.Subjects,
		Category:    req.Category,
		Motivation:  req.Motivation,

		WhyChosenSubjects: req.WhyChosenSubjects,
		HeardAbout:        req.HeardAbout,
		Social:            req.Social,
		PrevCompetitions:  req.PrevCompetitions,
		Skills:            req.Skills,
		Ideas:             req.Ideas,

		Status: models.StatusPending,
	}
}
