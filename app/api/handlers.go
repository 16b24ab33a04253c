package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pianokruemel/TymR/app/database"
	"github.com/Pianokruemel/TymR/app/engine"
	"github.com/Pianokruemel/TymR/app/tasks"
)

func NewHandler(sourceRepo database.SourceRepository, cacheRepo database.CacheRepository,
	settingsRepo database.SettingsRepository, snapshotRepo database.SnapshotRepository,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		sourceRepo:   sourceRepo,
		cacheRepo:    cacheRepo,
		settingsRepo: settingsRepo,
		snapshotRepo: snapshotRepo,
		scheduler:    scheduler,
	}
}

// GetCurrent serves the last published selection snapshot, the same
// key-value view the notification and widget surfaces render.
func (h *Handler) GetCurrent(c *gin.Context) {
	snapshot, err := h.snapshotRepo.GetSnapshot()
	if err != nil {
		slog.Error("Database error", "operation", "get_snapshot", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if snapshot == nil {
		// Nothing published yet; equivalent to the no-events state.
		c.JSON(http.StatusOK, database.Snapshot{
			Title:       "No upcoming events",
			SummaryLine: "No upcoming events",
			RemainingMs: -1,
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	if snapshot, err := h.snapshotRepo.GetSnapshot(); err == nil && snapshot != nil {
		health["last_published_at"] = snapshot.PublishedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListSources(c *gin.Context) {
	sources, err := h.sourceRepo.ListSources()
	if err != nil {
		slog.Error("Database error", "operation", "list_sources", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	result := make([]map[string]interface{}, 0, len(sources))
	for _, source := range sources {
		info := map[string]interface{}{
			"url":        source.URL,
			"name":       source.Name,
			"active":     source.Active,
			"created_at": source.CreatedAt,
		}

		if lastFetch, err := h.cacheRepo.GetLastFetchTime(source.URL); err == nil && !lastFetch.IsZero() {
			info["last_fetched_at"] = lastFetch
		}

		result = append(result, info)
	}

	c.JSON(http.StatusOK, gin.H{"sources": result})
}

// AddSource registers a calendar source and triggers an immediate fetch
// for it, so the published result picks it up without waiting for the
// next scheduled pass.
func (h *Handler) AddSource(c *gin.Context) {
	var req AddSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	if _, err := h.sourceRepo.UpsertSource(req.URL, req.Name, active); err != nil {
		slog.Error("Database error", "operation", "upsert_source", "url", req.URL, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if active {
		if err := h.scheduler.EnqueueSync(engine.Request{Mode: engine.ModeForceOne, URL: req.URL}); err != nil {
			slog.Warn("Failed to enqueue sync after source add", "url", req.URL, "error", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"url": req.URL, "active": active})
}

// UpdateSource flips a source's active flag and re-syncs so the published
// result reflects the change.
func (h *Handler) UpdateSource(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	var req UpdateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	found, err := h.sourceRepo.SetSourceActive(url, req.Active)
	if err != nil {
		slog.Error("Database error", "operation", "set_source_active", "url", url, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}

	if err := h.scheduler.EnqueueSync(engine.Request{Mode: engine.ModeScheduled}); err != nil {
		slog.Warn("Failed to enqueue sync after source update", "url", url, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "active": req.Active})
}

// RemoveSource deletes a source together with its cache entries, then
// re-syncs so its events disappear from the published result.
func (h *Handler) RemoveSource(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	if err := h.sourceRepo.RemoveSource(url); err != nil {
		slog.Error("Database error", "operation", "remove_source", "url", url, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if err := h.cacheRepo.Remove(url); err != nil {
		slog.Error("Database error", "operation", "remove_cache", "url", url, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if err := h.scheduler.EnqueueSync(engine.Request{Mode: engine.ModeScheduled}); err != nil {
		slog.Warn("Failed to enqueue sync after source removal", "url", url, "error", err)
	}

	c.Status(http.StatusNoContent)
}

// Refresh triggers a forced sync: for one source when a URL is given,
// otherwise for all active sources.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	// Body is optional; an empty body means refresh everything.
	_ = c.ShouldBindJSON(&req)

	syncReq := engine.Request{Mode: engine.ModeForceAll}
	if req.URL != "" {
		syncReq = engine.Request{Mode: engine.ModeForceOne, URL: req.URL}
	}

	if err := h.scheduler.EnqueueSync(syncReq); err != nil {
		slog.Error("Failed to enqueue forced sync", "error", err)
		c.Status(http.StatusServiceUnavailable)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"mode": string(syncReq.Mode), "url": syncReq.URL})
}

func (h *Handler) GetSettings(c *gin.Context) {
	showDetails, err := h.settingsRepo.GetBool(database.SettingShowDetails, true)
	if err != nil {
		slog.Error("Database error", "operation", "get_settings", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	showLocation, err := h.settingsRepo.GetBool(database.SettingShowLocation, true)
	if err != nil {
		slog.Error("Database error", "operation", "get_settings", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"show_details":  showDetails,
		"show_location": showLocation,
	})
}

// UpdateSettings stores display preferences and republishes from cache so
// the snapshot formatting follows immediately.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.ShowDetails != nil {
		if err := h.settingsRepo.SetBool(database.SettingShowDetails, *req.ShowDetails); err != nil {
			slog.Error("Database error", "operation", "set_settings", "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
	}
	if req.ShowLocation != nil {
		if err := h.settingsRepo.SetBool(database.SettingShowLocation, *req.ShowLocation); err != nil {
			slog.Error("Database error", "operation", "set_settings", "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
	}

	if err := h.scheduler.EnqueueDisplayRefresh(); err != nil {
		slog.Warn("Failed to enqueue display refresh after settings update", "error", err)
	}

	h.GetSettings(c)
}
