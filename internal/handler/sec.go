package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
	"github.com/zopper-dev/salesdost/backend/internal/incentive"
)

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ac := r.Context().Value(PrincipalCtxKey).(*AuthContext)
	h.successResponse(w, r, "profile", ac.SEC)
}

func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	ac := r.Context().Value(PrincipalCtxKey).(*AuthContext)

	var req struct {
		PhotoURL      string     `json:"photoUrl" validate:"omitempty,url"`
		BirthDate     *time.Time `json:"birthDate"`
		MaritalStatus string     `json:"maritalStatus" validate:"omitempty,oneof=single married"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sec := ac.SEC
	if req.PhotoURL != "" {
		sec.PhotoURL = req.PhotoURL
	}
	if req.BirthDate != nil {
		sec.BirthDate = req.BirthDate
	}
	if req.MaritalStatus != "" {
		sec.MaritalStatus = req.MaritalStatus
	}

	if err := h.repository.UpdateSECProfile(sec); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "profile updated", sec)
}

func (h *Handler) CreateSalesReport(w http.ResponseWriter, r *http.Request) {
	ac := r.Context().Value(PrincipalCtxKey).(*AuthContext)

	var req struct {
		DeviceID   string          `json:"deviceId" validate:"required"`
		PlanID     string          `json:"planId" validate:"required"`
		PlanType   string          `json:"planType" validate:"required"`
		PlanPrice  decimal.Decimal `json:"planPrice"`
		IMEI       string          `json:"imei" validate:"required,len=15,numeric"`
		DateOfSale time.Time       `json:"dateOfSale" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	report := &domain.SalesReport{
		SECID:      ac.SEC.ID,
		StoreID:    ac.SEC.StoreID,
		DeviceID:   req.DeviceID,
		PlanID:     req.PlanID,
		PlanType:   req.PlanType,
		PlanPrice:  req.PlanPrice,
		IMEI:       req.IMEI,
		DateOfSale: req.DateOfSale,
	}

	campaign, err := h.repository.GetActiveCampaign(report.StoreID, report.DeviceID, report.PlanID, report.DateOfSale)
	switch {
	case err == nil:
		report.CampaignActive = true
		report.IncentiveEarned = campaign.IncentiveFor(report.PlanPrice)
	case errors.Is(err, sql.ErrNoRows):
		// no campaign covers this sale; it earns nothing until one does
		report.IncentiveEarned = decimal.Zero
	default:
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.CreateSalesReport(report); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "sales_reports_imei_key" {
			h.errorResponse(w, r, "a sale for this IMEI has already been reported")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "sales report submitted", report)
}

func (h *Handler) ListMySalesReports(w http.ResponseWriter, r *http.Request) {
	ac := r.Context().Value(PrincipalCtxKey).(*AuthContext)

	reports, err := h.repository.ListSalesReportsBySEC(ac.SEC.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "sales reports", reports)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	// the leaderboard window opens at the start of the current month
	now := time.Now()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	entries, err := h.engine.ComputeLeaderboard(windowStart, incentive.DefaultScoreTable())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "leaderboard", entries)
}

func (h *Handler) CreateTestSubmission(w http.ResponseWriter, r *http.Request) {
	ac := r.Context().Value(PrincipalCtxKey).(*AuthContext)

	var req struct {
		Score                 int32                 `json:"score" validate:"min=0"`
		TotalQuestions        int32                 `json:"totalQuestions" validate:"required,min=1"`
		CompletionTimeSeconds int32                 `json:"completionTimeSeconds" validate:"required,min=1"`
		Responses             []domain.TestResponse `json:"responses" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Score > req.TotalQuestions {
		h.badRequest(w, r, errors.New("score cannot exceed the number of questions"))
		return
	}

	submission := &domain.TestSubmission{
		SECID:                 ac.SEC.ID,
		Score:                 req.Score,
		TotalQuestions:        req.TotalQuestions,
		CompletionTimeSeconds: req.CompletionTimeSeconds,
		Responses:             req.Responses,
	}

	if err := h.repository.CreateTestSubmission(submission); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// a passing attempt flips the one-time bonus flag; it never flips back
	if submission.Passed() && !ac.SEC.BonusEligible {
		if err := h.repository.SetSECBonusEligible(ac.SEC.ID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "test submission recorded", submission)
}

func (h *Handler) ListMyTestSubmissions(w http.ResponseWriter, r *http.Request) {
	ac := r.Context().Value(PrincipalCtxKey).(*AuthContext)

	submissions, err := h.repository.ListTestSubmissionsBySEC(ac.SEC.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "test submissions", submissions)
}
