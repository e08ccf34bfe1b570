package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func (h *Handler) publishMail(message domain.MailMessage) error {
	if h.mailChannel == nil {
		return nil
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"notification_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	)
}

func (h *Handler) GetPendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetPendingUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "pending signups", users)
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("invalid user id"))
		return 0, false
	}
	return id, true
}

func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.repository.GetUserByID(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "user not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.ApproveUser(id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "user is not pending approval")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	profile, err := h.repository.GetRoleProfileByUserID(id)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishMail(domain.MailMessage{
		Type: "account_approved",
		To:   profile.Email,
		Data: domain.AccountApprovedMailData{
			FullName: profile.FullName,
			Username: user.Username,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "user approved", nil)
}

func (h *Handler) RejectUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.repository.GetUserByID(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "user not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if user.ValidationState != domain.ValidationPending {
		h.errorResponse(w, r, "user is not pending approval")
		return
	}

	profile, err := h.repository.GetRoleProfileByUserID(id)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// deleting the user cascades to its role profile
	if err := h.repository.DeleteUser(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.publishMail(domain.MailMessage{
		Type: "account_rejected",
		To:   profile.Email,
		Data: domain.AccountRejectedMailData{
			FullName: profile.FullName,
			Reason:   req.Reason,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "user rejected", nil)
}
