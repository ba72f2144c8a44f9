package handlers

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/entity"
	"github.com/edumax/leads-service/internal/usecase"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	statsCacheKey = "leads:stats:summary"
	statsCacheTTL = 60 * time.Second
)

type LeadCreator interface {
	Execute(ctx context.Context, input usecase.CreateLeadInput) (*usecase.CreateLeadOutput, error)
}

type LeadRescorer interface {
	Execute(ctx context.Context, leadID int64) (*usecase.RescoreLeadOutput, error)
}

type LeadHandler struct {
	createUC     LeadCreator
	rescoreUC    LeadRescorer
	leads        entity.LeadRepositoryInterface
	interactions entity.InteractionRepositoryInterface
	cache        *redis.Client // nil disables stats caching
	logger       *logrus.Logger
	rateLimiter  *RateLimiter
}

func NewLeadHandler(
	createUC LeadCreator,
	rescoreUC LeadRescorer,
	leads entity.LeadRepositoryInterface,
	interactions entity.InteractionRepositoryInterface,
	cache *redis.Client,
	logger *logrus.Logger,
) *LeadHandler {
	return &LeadHandler{
		createUC:     createUC,
		rescoreUC:    rescoreUC,
		leads:        leads,
		interactions: interactions,
		cache:        cache,
		logger:       logger,
		rateLimiter:  NewRateLimiter(10, time.Minute), // 10 req/min per IP on intake
	}
}

func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		respondJSON(w, http.StatusTooManyRequests, errorResponse{
			Error: "too many requests, try again later", Code: "RATE_LIMITED",
		})
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	// The pipeline is fire-and-forget once started: a client disconnect must
	// not abort the in-flight transaction.
	ctx := context.WithoutCancel(r.Context())

	output, err := h.createUC.Execute(ctx, input)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, output)
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type listResponse struct {
	Data       interface{} `json:"data"`
	Pagination pagination  `json:"pagination"`
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := entity.LeadFilter{}
	if s := q.Get("status"); s != "" {
		status := entity.LeadStatus(s)
		if !status.Valid() {
			badRequest(w, "invalid status filter")
			return
		}
		filter.Status = status
	}
	if s := q.Get("source"); s != "" {
		source := entity.LeadSource(s)
		if !source.Valid() {
			badRequest(w, "invalid source filter")
			return
		}
		filter.Source = source
	}
	if s := q.Get("min_score"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			badRequest(w, "min_score must be a number")
			return
		}
		filter.MinScore = &v
	}
	if s := q.Get("max_score"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			badRequest(w, "max_score must be a number")
			return
		}
		filter.MaxScore = &v
	}

	sort := entity.LeadSort{
		Field: q.Get("sort_by"),
		Desc:  q.Get("sort_order") != "ASC", // newest first unless asked
	}

	page, limit := parsePagination(q.Get("page"), q.Get("limit"))

	leads, total, err := h.leads.List(r.Context(), filter, sort, page, limit)
	if err != nil {
		h.logger.WithError(err).Error("lead list failed")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, listResponse{
		Data: leads,
		Pagination: pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages(total, limit),
		},
	})
}

type leadDetailResponse struct {
	*entity.Lead
	Interactions []entity.Interaction `json:"interactions"`
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	lead, err := h.leads.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, &usecase.NotFoundError{Resource: "lead", ID: id})
			return
		}
		respondError(w, err)
		return
	}

	interactions, err := h.interactions.ListByLeadID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, leadDetailResponse{Lead: lead, Interactions: interactions})
}

func (h *LeadHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var input struct {
		Status string  `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	status := entity.LeadStatus(input.Status)
	if !status.Valid() {
		badRequest(w, "invalid status")
		return
	}

	found, err := h.leads.UpdateStatus(r.Context(), id, status, input.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	if !found {
		respondError(w, &usecase.NotFoundError{Resource: "lead", ID: id})
		return
	}

	lead, err := h.leads.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleRescore(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx := context.WithoutCancel(r.Context())

	output, err := h.rescoreUC.Execute(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, output)
}

func (h *LeadHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, statsCacheKey).Bytes(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	stats, err := h.leads.Stats(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	if h.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := h.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
				h.logger.WithError(err).Warn("stats cache write failed")
			}
		}
	}

	respondJSON(w, http.StatusOK, stats)
}

func (h *LeadHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"id", "full_name", "email", "phone", "source", "status", "score", "quality", "notes", "created_at"})

	for _, lead := range leads {
		quality := ""
		if lead.Quality != nil {
			quality = *lead.Quality
		}
		cw.Write([]string{
			strconv.FormatInt(lead.ID, 10),
			lead.FullName,
			lead.Email,
			lead.Phone,
			string(lead.Source),
			string(lead.Status),
			strconv.Itoa(lead.Score),
			quality,
			lead.Notes,
			lead.CreatedAt.Format(time.RFC3339),
		})
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

func parsePagination(pageStr, limitStr string) (int, int) {
	page, _ := strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitStr)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
