package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
	"github.com/zopper-dev/salesdost/backend/internal/incentive"
)

// PayoutProcessed publishes a payout notification for the SEC who made the
// sale. Called by the lifecycle manager for every report that transitioned to
// paid; failures are logged and never surface to the payout request.
func (h *Handler) PayoutProcessed(report *domain.SalesReport) {
	sec, err := h.repository.GetSECByID(report.SECID)
	if err != nil {
		slog.Error("failed to resolve SEC for payout notification", "reportId", report.ID, "secId", report.SECID, "error", err)
		return
	}

	if err := h.publishMail(domain.MailMessage{
		Type: "payout_processed",
		To:   sec.Phone,
		Data: domain.PayoutProcessedData{
			FullName: sec.FullName,
			IMEI:     report.IMEI,
			Amount:   report.IncentiveEarned,
		},
	}); err != nil {
		slog.Error("failed to publish payout notification", "reportId", report.ID, "error", err)
	}
}

func (h *Handler) ListSalesReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.repository.ListSalesReports()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "sales reports", reports)
}

func (h *Handler) reportIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("invalid report id"))
		return 0, false
	}
	return id, true
}

func (h *Handler) MarkSalesReportPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportIDParam(w, r)
	if !ok {
		return
	}

	report, err := h.lifecycle.MarkPaid(id)
	if err != nil {
		switch {
		case errors.Is(err, incentive.ErrNotFound):
			h.notFound(w, r, "sales report not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "sales report marked paid", report)
}

func (h *Handler) DiscardSalesReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportIDParam(w, r)
	if !ok {
		return
	}

	if err := h.lifecycle.Discard(id); err != nil {
		switch {
		case errors.Is(err, incentive.ErrNotFound):
			h.notFound(w, r, "sales report not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "sales report discarded", nil)
}

func (h *Handler) BulkSalesReportAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []int64 `json:"ids" validate:"required,min=1"`
		Action string  `json:"action" validate:"required,oneof=approve discard"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	jobID := uuid.NewString()
	count, err := h.lifecycle.BulkAction(jobID, req.IDs, incentive.BulkActionType(req.Action))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "bulk action completed", map[string]any{
		"jobId": jobID,
		"count": count,
	})
}

func (h *Handler) GetBulkJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(jobID); err != nil {
		h.badRequest(w, r, errors.New("invalid job id"))
		return
	}

	if h.jobs == nil {
		h.notFound(w, r, "bulk job not found")
		return
	}

	progress, err := h.jobs.Get(jobID)
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			h.notFound(w, r, "bulk job not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "bulk job progress", progress)
}
