// internal/app/features/submissions/handler.go
package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/store/submissions"
	"github.com/dalemusser/applyhub/internal/app/system/auditlog"
	"github.com/dalemusser/applyhub/internal/app/system/auth"
	"github.com/dalemusser/applyhub/internal/app/system/normalize"
	"github.com/dalemusser/applyhub/internal/app/system/provision"
	"github.com/dalemusser/applyhub/internal/app/system/timeouts"
	"github.com/dalemusser/applyhub/internal/app/system/webutil"
	"github.com/dalemusser/applyhub/internal/domain/models"
)

// Handler serves the admin review surface: listing, status changes,
// deletion, and CSV export of submissions. All routes sit behind
// RequireAdmin.
type Handler struct {
	Store     *submissions.Store
	Provision *provision.Provisioner
	Audit     *auditlog.Logger
	Errs      *webutil.ErrorLogger
	Log       *zap.Logger
}

// NewHandler constructs a review Handler.
func NewHandler(store *submissions.Store, prov *provision.Provisioner, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:     store,
		Provision: prov,
		Audit:     audit,
		Errs:      webutil.NewErrorLogger(logger),
		Log:       logger,
	}
}

// List handles GET /api/submissions, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	subs, err := h.Store.List(ctx)
	if err != nil {
		h.Errs.ServerError(w, r, "list submissions", err, "Database error")
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    subs,
	})
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// SetStatus handles PUT /api/submissions/{id}.
//
// Approving a submission provisions a member account and emails one-time
// credentials in the background; the response does not wait on either.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		webutil.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Status = normalize.Status(req.Status)
	if !models.ValidStatus(req.Status) {
		webutil.Fail(w, http.StatusBadRequest, "Invalid status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Store.UpdateStatus(ctx, id, req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, submissions.ErrInvalidID) {
			webutil.Fail(w, http.StatusBadRequest, "Invalid submission IDs")
			return
		}
		h.Errs.ServerError(w, r, "update submission status", err, "Database error")
		return
	}

	if updated > 0 {
		actor, _ := auth.IsAdmin(r)
		h.Audit.StatusChanged(r.Context(), r, actor, id, req.Status)
		h.decide(id, req.Status)
	}

	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"updated": updated,
	})
}

// decide kicks off the post-decision side effects for a single
// submission without blocking the response.
func (h *Handler) decide(id, status string) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
		defer cancel()

		sub, err := h.Store.GetByID(ctx, id)
		if err != nil {
			h.Log.Error("load submission after decision failed",
				zap.String("submission_id", id), zap.Error(err))
			return
		}
		switch status {
		case models.StatusApproved:
			if err := h.Provision.ProvisionApproved(ctx, sub); err != nil {
				h.Log.Error("provision approved submission failed",
					zap.String("submission_id", id), zap.Error(err))
			}
		case models.StatusRejected:
			h.Provision.Reject(sub)
		}
	}()
}

type bulkUpdateRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// BulkUpdate handles PUT /api/submissions/bulk-update.
func (h *Handler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDs == nil {
		webutil.Fail(w, http.StatusBadRequest, "Invalid submission IDs")
		return
	}
	req.Status = normalize.Status(req.Status)
	if !models.ValidStatus(req.Status) {
		webutil.Fail(w, http.StatusBadRequest, "Invalid status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	updated, err := h.Store.UpdateStatusMany(ctx, req.IDs, req.Status)
	if err != nil {
		h.Errs.ServerError(w, r, "bulk update submissions", err, "Database error")
		return
	}

	actor, _ := auth.IsAdmin(r)
	h.Audit.BulkStatusChanged(r.Context(), r, actor, req.Status, updated)

	if updated > 0 && (req.Status == models.StatusApproved || req.Status == models.StatusRejected) {
		ids := append([]string(nil), req.IDs...)
		status := req.Status
		go func() {
			bctx, bcancel := context.WithTimeout(context.Background(), timeouts.Batch())
			defer bcancel()

			subs, err := h.Store.GetByIDs(bctx, ids)
			if err != nil {
				h.Log.Error("load submissions after bulk decision failed",
					zap.String("status", status), zap.Error(err))
				return
			}
			if status == models.StatusApproved {
				h.Provision.ProvisionBatch(bctx, subs)
				return
			}
			for i := range subs {
				h.Provision.Reject(&subs[i])
			}
		}()
	}

	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"updated": updated,
	})
}

// DeleteOne handles DELETE /api/submissions/{id}.
func (h *Handler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	deleted, err := h.Store.DeleteOne(ctx, id)
	if err != nil && !errors.Is(err, submissions.ErrInvalidID) {
		h.Errs.ServerError(w, r, "delete submission", err, "Database error")
		return
	}
	if deleted == 0 {
		webutil.Fail(w, http.StatusNotFound, "Submission not found")
		return
	}

	actor, _ := auth.IsAdmin(r)
	h.Audit.SubmissionDeleted(r.Context(), r, actor, id)

	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": deleted,
	})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDelete handles DELETE /api/submissions/bulk-delete.
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDs == nil {
		webutil.Fail(w, http.StatusBadRequest, "IDs must be provided as an array")
		return
	}

	valid := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		id = strings.TrimSpace(id)
		if _, err := primitive.ObjectIDFromHex(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		webutil.Fail(w, http.StatusBadRequest, "No valid IDs provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	deleted, err := h.Store.DeleteMany(ctx, valid)
	if err != nil {
		h.Errs.ServerError(w, r, "bulk delete submissions", err, "Database operation failed")
		return
	}

	actor, _ := auth.IsAdmin(r)
	h.Audit.BulkDeleted(r.Context(), r, actor, deleted)

	webutil.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": deleted,
		"message": fmt.Sprintf("Deleted %d submissions", deleted),
	})
}
