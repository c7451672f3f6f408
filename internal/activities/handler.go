package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/stridestats/stridestats/internal/telemetry/metrics"
	"github.com/stridestats/stridestats/internal/telemetry/tracing"
	"github.com/stridestats/stridestats/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=activities_test

// Refresh fetch parameter bounds, matching what the remote API accepts.
const (
	minPerPage  = 10
	maxPerPage  = 200
	minMaxPages = 1
	maxMaxPages = 50

	defaultPerPage  = 50
	defaultMaxPages = 4
)

type activitiesStore interface {
	Load(ctx context.Context) (*RawTable, error)
	Replace(ctx context.Context, table *RawTable) error
}

// FetchParams parameterize one remote fetch. Force bypasses the fetcher's
// time-based cache (used by the explicit refresh action).
type FetchParams struct {
	PerPage  int
	MaxPages int
	Force    bool
}

type activitiesFetcher interface {
	FetchActivities(ctx context.Context, params FetchParams) (*RawTable, error)
}

// DashboardResponse is one full render pass: KPIs, chart feeds and the
// selector options. When the time window matches nothing, EmptySelection
// is set and only Filters is populated, so the client can keep the
// selectors active and let the user broaden the window.
type DashboardResponse struct {
	Headline         *Headline       `json:"headline,omitempty"`
	Monthly          []MonthlyStats  `json:"monthly,omitempty"`
	Categories       []CategoryStats `json:"categories,omitempty"`
	Scatter          []ScatterPoint  `json:"scatter,omitempty"`
	Types            []TypeCount     `json:"types,omitempty"`
	DistanceOverTime []SeriesPoint   `json:"distanceOverTime,omitempty"`
	PaceTrend        []SeriesPoint   `json:"paceTrend,omitempty"`
	Filters          FilterOptions   `json:"filters"`
	EmptySelection   bool            `json:"emptySelection"`
}

type RefreshResponse struct {
	Activities int `json:"activities"`
	PerPage    int `json:"perPage"`
	MaxPages   int `json:"maxPages"`
}

type Handler struct {
	store    activitiesStore
	fetcher  activitiesFetcher
	analyzer *Analyzer
	instr    *metrics.Manager
}

func NewHandler(store activitiesStore, fetcher activitiesFetcher, instr *metrics.Manager) *Handler {
	return &Handler{
		store:    store,
		fetcher:  fetcher,
		analyzer: NewAnalyzer(),
		instr:    instr,
	}
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.dashboard")
	defer span.End()

	window, err := windowFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	valid, failStatus, failMsg := handler.loadValidated(ctx)
	if failMsg != "" {
		http.Error(w, failMsg, failStatus)
		return
	}

	response := DashboardResponse{
		Filters: handler.analyzer.Filters(valid),
	}

	windowed, err := ApplyWindow(valid, window)
	if errors.Is(err, ErrEmptySelection) {
		log.Debugf("dashboard: empty selection for window %+v", window)
		handler.instr.CounterEmptySelections.Inc()
		response.EmptySelection = true
	} else {
		headline := handler.analyzer.Headline(ctx, windowed)
		response.Headline = &headline
		response.Monthly = handler.analyzer.Monthly(ctx, windowed)
		response.Categories = handler.analyzer.Categories(ctx, windowed)
		response.Scatter = handler.analyzer.Scatter(windowed)
		response.Types = handler.analyzer.TypeBreakdown(ctx, windowed)
		response.DistanceOverTime = handler.analyzer.DistanceOverTime(ctx, windowed)
		response.PaceTrend = handler.analyzer.PaceTrend(ctx, windowed)
	}

	responseJson, err := json.Marshal(response)
	if err != nil {
		log.Errorf("failed to marshal dashboard response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.instr.CounterDashboardRenders.Inc()
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, responseJson, http.StatusOK)
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.export")
	defer span.End()

	window, err := windowFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	valid, failStatus, failMsg := handler.loadValidated(ctx)
	if failMsg != "" {
		http.Error(w, failMsg, failStatus)
		return
	}

	windowed, err := ApplyWindow(valid, window)
	if errors.Is(err, ErrEmptySelection) {
		http.Error(w, "no activities in selection", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", pkg.ContentType.CSV)
	w.Header().Set("Content-Disposition", `attachment; filename="activities.csv"`)
	if err := WriteCSV(w, windowed); err != nil {
		// headers are out at this point, only log
		log.Errorf("failed to write activities csv export: %s", err)
	}
}

func (handler *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.refresh")
	defer span.End()

	params, err := fetchParamsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fetched, err := handler.fetcher.FetchActivities(ctx, params)
	if err != nil {
		log.Errorf("refresh: fetch activities: %s", err)
		http.Error(w, "failed to fetch activities", http.StatusBadGateway)
		return
	}

	if err := handler.store.Replace(ctx, fetched); err != nil {
		log.Errorf("refresh: replace activities table: %s", err)
		http.Error(w, "failed to store fetched activities", http.StatusInternalServerError)
		return
	}

	handler.instr.CounterRefreshes.Inc()
	handler.instr.GaugeActivities.Set(float64(len(fetched.Rows)))

	responseJson, err := json.Marshal(RefreshResponse{
		Activities: len(fetched.Rows),
		PerPage:    params.PerPage,
		MaxPages:   params.MaxPages,
	})
	if err != nil {
		log.Errorf("failed to marshal refresh response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Infof("refresh done: %d activities fetched", len(fetched.Rows))
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, responseJson, http.StatusOK)
}

// loadValidated runs the fatal part of the pipeline: load, normalize,
// validate. A non-empty message means the render pass is over.
func (handler *Handler) loadValidated(ctx context.Context) (_ *Table, status int, message string) {
	raw, err := handler.store.Load(ctx)
	if err != nil {
		log.Errorf("dashboard: load activities: %s", err)
		return nil, http.StatusInternalServerError, "failed to load activities"
	}

	table, err := Normalize(raw)
	if errors.Is(err, ErrNoDateColumn) {
		return nil, http.StatusUnprocessableEntity, "no date column found in activities data"
	}

	valid, err := Validate(table)
	if errors.Is(err, ErrNoValidActivities) {
		return nil, http.StatusUnprocessableEntity, "no valid activities after validation"
	}

	handler.instr.GaugeActivities.Set(float64(valid.Len()))

	return valid, http.StatusOK, ""
}

func windowFromQuery(r *http.Request) (TimeWindow, error) {
	var window TimeWindow
	var err error

	if window.Year, err = windowComponent(r, "year", 0); err != nil {
		return TimeWindow{}, err
	}
	if window.Month, err = windowComponent(r, "month", 12); err != nil {
		return TimeWindow{}, err
	}
	if window.Day, err = windowComponent(r, "day", 31); err != nil {
		return TimeWindow{}, err
	}

	return window, nil
}

// windowComponent parses one selector value; empty and "all" mean no
// constraint. max of 0 means unbounded (the year selector).
func windowComponent(r *http.Request, name string, max int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" || value == "all" {
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || (max > 0 && n > max) {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return n, nil
}

func fetchParamsFromQuery(r *http.Request) (FetchParams, error) {
	params := FetchParams{
		PerPage:  defaultPerPage,
		MaxPages: defaultMaxPages,
		Force:    true, // explicit refresh always bypasses the fetch cache
	}

	if perPageStr := r.URL.Query().Get("per_page"); perPageStr != "" {
		perPage, err := strconv.Atoi(perPageStr)
		if err != nil || perPage < minPerPage || perPage > maxPerPage {
			return FetchParams{}, fmt.Errorf("invalid per_page parameter (%d - %d)", minPerPage, maxPerPage)
		}
		params.PerPage = perPage
	}

	if maxPagesStr := r.URL.Query().Get("max_pages"); maxPagesStr != "" {
		maxPages, err := strconv.Atoi(maxPagesStr)
		if err != nil || maxPages < minMaxPages || maxPages > maxMaxPages {
			return FetchParams{}, fmt.Errorf("invalid max_pages parameter (%d - %d)", minMaxPages, maxMaxPages)
		}
		params.MaxPages = maxPages
	}

	return params, nil
}
