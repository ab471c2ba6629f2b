// Package handlers provides HTTP handlers for the company dashboard.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/internal/modules/charts"
	"github.com/aristath/finlookup/internal/modules/dashboard"
	"github.com/aristath/finlookup/internal/modules/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgpack is negotiated through the Accept header.
const ContentTypeMsgpack = "application/msgpack"

// allHistoryStart opens the window for range=all.
const allHistoryStart = "1900-01-01"

// Handler handles dashboard HTTP requests
type Handler struct {
	controller        *dashboard.Controller
	validate          *validator.Validate
	defaultWindowDays int
	now               func() time.Time
	log               zerolog.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(controller *dashboard.Controller, defaultWindowDays int, log zerolog.Logger) *Handler {
	return &Handler{
		controller:        controller,
		validate:          validator.New(),
		defaultWindowDays: defaultWindowDays,
		now:               time.Now,
		log:               log.With().Str("handler", "dashboard").Logger(),
	}
}

// windowQuery holds the query parameters shared by the windowed views.
type windowQuery struct {
	Start    string `validate:"omitempty,datetime=2006-01-02"`
	End      string `validate:"omitempty,datetime=2006-01-02"`
	Range    string `validate:"omitempty,oneof=1M 3M 6M 1Y 5Y 10Y all"`
	Interval string `validate:"omitempty,oneof=day week month"`
}

type flagQuery struct {
	Value string `validate:"omitempty,boolean"`
}

// HandleListCompanies handles GET /api/companies
func (h *Handler) HandleListCompanies(w http.ResponseWriter, r *http.Request) {
	list := h.controller.Companies()
	h.respond(w, r, http.StatusOK, list, map[string]interface{}{"count": len(list)})
}

// HandleSelectCompany handles POST /api/companies/{id}/select
func (h *Handler) HandleSelectCompany(w http.ResponseWriter, r *http.Request) {
	online, ok := h.flag(w, r, "online", false)
	if !ok {
		return
	}

	selection, err := h.controller.SelectCompany(r.Context(), chi.URLParam(r, "id"), online)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info().
		Str("company_id", selection.Session.CompanyID).
		Bool("online", online).
		Int("failed", len(selection.Summary.Messages())).
		Msg("Company selected")

	h.respond(w, r, http.StatusOK, selection, nil)
}

// priceResponse pairs the price view with the close series at the requested interval.
type priceResponse struct {
	View     *dashboard.PriceView    `json:"view"`
	Interval string                  `json:"interval"`
	Closes   []charts.ChartDataPoint `json:"closes"`
}

// HandleGetPrice handles GET /api/companies/{id}/price
func (h *Handler) HandleGetPrice(w http.ResponseWriter, r *http.Request) {
	session, window, query, ok := h.sessionAndWindow(w, r)
	if !ok {
		return
	}

	view, err := h.controller.PriceView(session, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	points := make([]charts.ChartDataPoint, 0, len(view.Price.Bars))
	for _, bar := range view.Price.Bars {
		points = append(points, charts.Point(bar.Date, bar.Close))
	}
	interval := query.Interval
	if interval == "" {
		interval = "day"
	}
	closes, err := charts.Aggregate(points, interval)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.respond(w, r, http.StatusOK, priceResponse{View: view, Interval: interval, Closes: closes}, nil)
}

// HandleGetRevenue handles GET /api/companies/{id}/revenue
func (h *Handler) HandleGetRevenue(w http.ResponseWriter, r *http.Request) {
	session, window, _, ok := h.sessionAndWindow(w, r)
	if !ok {
		return
	}
	result, err := h.controller.RevenueView(session, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result, nil)
}

// HandleGetStatements handles GET /api/companies/{id}/statements
func (h *Handler) HandleGetStatements(w http.ResponseWriter, r *http.Request) {
	session, window, _, ok := h.sessionAndWindow(w, r)
	if !ok {
		return
	}
	result, err := h.controller.FinancialStatementsView(session, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result, nil)
}

// HandleGetShareholding handles GET /api/companies/{id}/shareholding
func (h *Handler) HandleGetShareholding(w http.ResponseWriter, r *http.Request) {
	session, window, _, ok := h.sessionAndWindow(w, r)
	if !ok {
		return
	}
	result, err := h.controller.ShareholdingView(session, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result, nil)
}

// HandleGetValuation handles GET /api/companies/{id}/valuation
func (h *Handler) HandleGetValuation(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	result, err := h.controller.ValuationRatios(session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, result, nil)
}

// HandleGetNews handles GET /api/companies/{id}/news
func (h *Handler) HandleGetNews(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	rows, err := h.controller.NewsView(session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, rows, map[string]interface{}{"count": len(rows)})
}

// HandleGetNewsAnalysis handles GET /api/companies/{id}/news/analysis
func (h *Handler) HandleGetNewsAnalysis(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	enabled, ok := h.flag(w, r, "enabled", true)
	if !ok {
		return
	}
	analysis, err := h.controller.NewsAnalysis(r.Context(), session, enabled)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, analysis, nil)
}

// HandleGetOverview handles GET /api/companies/{id}/overview
func (h *Handler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	session, window, _, ok := h.sessionAndWindow(w, r)
	if !ok {
		return
	}
	overview := h.controller.Overview(session, window)
	h.respond(w, r, http.StatusOK, overview, map[string]interface{}{"issues": len(overview.Issues)})
}

// Helper methods

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (dashboard.Session, bool) {
	session, err := dashboard.NewSession(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return dashboard.Session{}, false
	}
	return session, true
}

func (h *Handler) sessionAndWindow(w http.ResponseWriter, r *http.Request) (dashboard.Session, metrics.Window, windowQuery, bool) {
	session, ok := h.session(w, r)
	if !ok {
		return dashboard.Session{}, metrics.Window{}, windowQuery{}, false
	}

	q := r.URL.Query()
	query := windowQuery{
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Range:    q.Get("range"),
		Interval: q.Get("interval"),
	}
	if err := h.validate.Struct(query); err != nil {
		http.Error(w, "Invalid query parameters: "+err.Error(), http.StatusBadRequest)
		return dashboard.Session{}, metrics.Window{}, windowQuery{}, false
	}

	window, err := h.window(query)
	if err != nil {
		h.writeError(w, r, err)
		return dashboard.Session{}, metrics.Window{}, windowQuery{}, false
	}
	return session, window, query, true
}

// window resolves the query into a date window. Explicit start wins over a range
// preset; with neither, the default number of days ending on end (or today) is used.
func (h *Handler) window(q windowQuery) (metrics.Window, error) {
	end := domain.Day(h.now()).Format(domain.DateLayout)
	if q.End != "" {
		end = q.End
	}

	switch {
	case q.Start != "":
		return metrics.ParseWindow(q.Start, end)
	case q.Range == "all":
		return metrics.ParseWindow(allHistoryStart, end)
	}

	last, err := metrics.ParseWindow(end, end)
	if err != nil {
		return metrics.Window{}, err
	}
	if q.Range != "" {
		start, _ := charts.PresetStart(q.Range, last.End)
		return metrics.NewWindow(start, last.End)
	}
	return metrics.LastDays(last.End, h.defaultWindowDays), nil
}

func (h *Handler) flag(w http.ResponseWriter, r *http.Request, name string, def bool) (bool, bool) {
	raw := r.URL.Query().Get(name)
	if err := h.validate.Struct(flagQuery{Value: raw}); err != nil {
		http.Error(w, "Invalid "+name+" parameter", http.StatusBadRequest)
		return false, false
	}
	if raw == "" {
		return def, true
	}
	v, _ := strconv.ParseBool(raw)
	return v, true
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCompanyID), errors.Is(err, metrics.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCacheMiss):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyWindow),
		errors.Is(err, domain.ErrInsufficientHistory),
		errors.Is(err, domain.ErrUndefinedRatio):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMalformedDataset):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	event := h.log.Debug()
	if status >= http.StatusInternalServerError {
		event = h.log.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request failed")
	http.Error(w, err.Error(), status)
}

// respond wraps data in the response envelope and encodes it as msgpack when the
// client asks for it, JSON otherwise.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, data interface{}, extra map[string]interface{}) {
	metadata := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for k, v := range extra {
		metadata[k] = v
	}
	response := map[string]interface{}{
		"data":     data,
		"metadata": metadata,
	}

	if strings.Contains(r.Header.Get("Accept"), ContentTypeMsgpack) {
		h.writeMsgpack(w, status, response)
		return
	}
	h.writeJSON(w, status, response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeMsgpack(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", ContentTypeMsgpack)
	w.WriteHeader(status)
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode msgpack response")
	}
}
