package api

import (
	"github.com/Pianokruemel/TymR/app/database"
	"github.com/Pianokruemel/TymR/app/tasks"
)

type Handler struct {
	sourceRepo   database.SourceRepository
	cacheRepo    database.CacheRepository
	settingsRepo database.SettingsRepository
	snapshotRepo database.SnapshotRepository
	scheduler    tasks.TaskSchedulerInterface
}

type AddSourceRequest struct {
	URL    string `json:"url" binding:"required"`
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

type UpdateSourceRequest struct {
	Active bool `json:"active"`
}

type RefreshRequest struct {
	URL string `json:"url"`
}

type UpdateSettingsRequest struct {
	ShowDetails  *bool `json:"show_details"`
	ShowLocation *bool `json:"show_location"`
}
