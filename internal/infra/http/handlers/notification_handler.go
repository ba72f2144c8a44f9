package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/entity"
	"github.com/edumax/leads-service/internal/usecase"
)

type NotificationHandler struct {
	dispatcher    *usecase.NotificationDispatcher
	retentionDays int
	logger        *logrus.Logger
}

func NewNotificationHandler(dispatcher *usecase.NotificationDispatcher, retentionDays int, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		dispatcher:    dispatcher,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := entity.NotificationFilter{
		RecipientType: entity.RecipientType(q.Get("recipient_type")),
		Priority:      entity.NotificationPriority(q.Get("priority")),
		Type:          entity.NotificationType(q.Get("type")),
	}
	if s := q.Get("is_read"); s != "" {
		isRead, err := strconv.ParseBool(s)
		if err != nil {
			badRequest(w, "is_read must be true or false")
			return
		}
		filter.IsRead = &isRead
	}

	page, limit := parsePagination(q.Get("page"), q.Get("limit"))

	notifications, total, err := h.dispatcher.List(r.Context(), filter, page, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, listResponse{
		Data: notifications,
		Pagination: pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
		},
	})
}

func (h *NotificationHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	filter := entity.NotificationFilter{
		RecipientType: entity.RecipientType(r.URL.Query().Get("recipient_type")),
	}

	stats, err := h.dispatcher.Stats(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.dispatcher.MarkRead(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *NotificationHandler) HandleMarkManyRead(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if len(input.IDs) == 0 {
		badRequest(w, "ids is required")
		return
	}

	updated, err := h.dispatcher.MarkManyRead(r.Context(), input.IDs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *NotificationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.dispatcher.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *NotificationHandler) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	days := h.retentionDays
	if s := r.URL.Query().Get("older_than_days"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			badRequest(w, "older_than_days must be a positive number")
			return
		}
		days = v
	}

	deleted, err := h.dispatcher.Cleanup(r.Context(), days)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
