package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StoreID        string          `json:"storeId" validate:"required"`
		DeviceID       string          `json:"deviceId" validate:"required"`
		PlanID         string          `json:"planId" validate:"required"`
		IncentiveType  string          `json:"incentiveType" validate:"required,oneof=FLAT PERCENT"`
		IncentiveValue decimal.Decimal `json:"incentiveValue" validate:"required"`
		StartDate      time.Time       `json:"startDate" validate:"required"`
		EndDate        time.Time       `json:"endDate" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.EndDate.Before(req.StartDate) {
		h.badRequest(w, r, errors.New("end date cannot be before start date"))
		return
	}
	if req.IncentiveValue.IsNegative() {
		h.badRequest(w, r, errors.New("incentive value cannot be negative"))
		return
	}

	campaign := &domain.Campaign{
		StoreID:        req.StoreID,
		DeviceID:       req.DeviceID,
		PlanID:         req.PlanID,
		IncentiveType:  domain.IncentiveType(req.IncentiveType),
		IncentiveValue: req.IncentiveValue,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Active:         true,
	}

	if err := h.repository.CreateCampaign(campaign); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "campaign created", campaign)
}

func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.repository.ListCampaigns()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "campaigns", campaigns)
}

func (h *Handler) DeactivateCampaign(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("invalid campaign id"))
		return
	}

	if err := h.repository.DeactivateCampaign(id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "campaign not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "campaign deactivated", nil)
}
