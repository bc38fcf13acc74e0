package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"jobloss/internal/catalog"
	"jobloss/internal/engine"
	"jobloss/internal/models"
	"jobloss/internal/view"
)

// Dataset is one loaded, aggregated table.
type Dataset struct {
	Binder   *view.Binder
	Stats    models.LoadStats
	LoadedAt time.Time
}

// NewDataset binds an aggregated table for serving.
func NewDataset(rows []models.AggregatedRow, stats models.LoadStats) *Dataset {
	return &Dataset{Binder: view.NewBinder(rows), Stats: stats, LoadedAt: time.Now()}
}

// ReloadFunc loads a fresh dataset from the configured source.
type ReloadFunc func() (*Dataset, error)

type Handler struct {
	data   atomic.Pointer[Dataset]
	reload ReloadFunc
}

func NewHandler(data *Dataset) *Handler {
	h := &Handler{}
	if data != nil {
		h.data.Store(data)
	}
	return h
}

// SetData swaps the live dataset.
func (h *Handler) SetData(data *Dataset) {
	h.data.Store(data)
}

// EnableReload exposes POST /api/reload. Only wired in debug mode.
func (h *Handler) EnableReload(fn ReloadFunc) {
	h.reload = fn
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetPage)
	e.GET("/health", h.GetHealth)

	api := e.Group("/api")
	api.GET("/sectors", h.GetSectors)
	api.GET("/map", h.GetMap)
	api.GET("/table", h.GetTable)
	api.GET("/table.arrow", h.GetTableArrow)
	if h.reload != nil {
		api.POST("/reload", h.PostReload)
	}
}

// --- HELPERS ---

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func errorJSON(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// dataset returns the live dataset or writes 503 while none is loaded.
func (h *Handler) dataset(c echo.Context) (*Dataset, bool) {
	ds := h.data.Load()
	if ds == nil {
		_ = c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "dataset not loaded"})
		return nil, false
	}
	return ds, true
}

// --- HANDLERS ---

func (h *Handler) GetHealth(c echo.Context) error {
	ds := h.data.Load()
	if ds == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"groups":    ds.Stats.Groups,
		"loaded_at": ds.LoadedAt.UTC().Format(time.RFC3339),
	})
}

// returns the dropdown entries in display order
func (h *Handler) GetSectors(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"default": catalog.Default,
		"options": catalog.Options(),
	})
}

// GetMap answers a dropdown change: ?sector=CODE, default X01.
func (h *Handler) GetMap(c echo.Context) error {
	ds, ok := h.dataset(c)
	if !ok {
		return nil
	}

	var (
		state view.ViewState
		err   error
	)
	if sector := c.QueryParam("sector"); sector == "" {
		state, err = ds.Binder.InitialPayload()
	} else {
		state, err = ds.Binder.OnSelectionChanged(view.ViewState{}, sector)
	}

	var unknown *catalog.UnknownSectorError
	var missing *view.MissingColumnError
	switch {
	case errors.As(err, &unknown):
		zap.L().Warn("unknown sector selected", zap.String("sector", unknown.Code))
		return errorJSON(c, http.StatusBadRequest, err)
	case errors.As(err, &missing):
		zap.L().Error("aggregated table missing column", zap.String("column", missing.Column), zap.String("state", missing.State))
		return errorJSON(c, http.StatusUnprocessableEntity, err)
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, state.Payload)
}

func (h *Handler) GetTable(c echo.Context) error {
	ds, ok := h.dataset(c)
	if !ok {
		return nil
	}
	rows := ds.Binder.Rows()
	total := len(rows)
	limit, offset := getPaginationParams(c, total)

	page := []models.AggregatedRow{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = rows[offset:end]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   page,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// streams the aggregated table as Arrow IPC
func (h *Handler) GetTableArrow(c echo.Context) error {
	ds, ok := h.dataset(c)
	if !ok {
		return nil
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.apache.arrow.stream")
	c.Response().WriteHeader(http.StatusOK)
	return engine.WriteArrow(c.Response(), ds.Binder.Rows())
}

// PostReload re-reads the source. A failed reload keeps the current table.
func (h *Handler) PostReload(c echo.Context) error {
	ds, err := h.reload()
	if err != nil {
		zap.L().Error("reload failed, keeping previous dataset", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, err)
	}
	h.SetData(ds)
	return c.JSON(http.StatusOK, ds.Stats)
}
