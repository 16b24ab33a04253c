package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Pianokruemel/TymR/app/database"
)

const noEventsTitle = "No upcoming events"

var _ PublisherInterface = (*Publisher)(nil)

// Publisher renders a selection result into the plain-string snapshot the
// notification and widget surfaces display, and persists it. Display
// preferences only affect formatting, never selection.
type Publisher struct {
	snapshotRepo database.SnapshotRepository
	settingsRepo database.SettingsRepository
	now          func() time.Time
}

func NewPublisher(snapshotRepo database.SnapshotRepository, settingsRepo database.SettingsRepository) *Publisher {
	return &Publisher{
		snapshotRepo: snapshotRepo,
		settingsRepo: settingsRepo,
		now:          time.Now,
	}
}

// Publish stores the snapshot for the given selection. A nil selection
// publishes the explicit no-events state; that is a valid result, not an
// error.
func (p *Publisher) Publish(selection *Selection) error {
	snapshot := p.buildSnapshot(selection)

	if err := p.snapshotRepo.PutSnapshot(snapshot); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	if selection == nil {
		slog.Info("Published result", "event", "none")
	} else {
		slog.Info("Published result", "event", selection.Event.Summary,
			"ongoing", selection.IsOngoing, "remaining", selection.TimeRemaining.String())
	}

	return nil
}

func (p *Publisher) buildSnapshot(selection *Selection) database.Snapshot {
	if selection == nil {
		return database.Snapshot{
			Title:       noEventsTitle,
			SummaryLine: noEventsTitle,
			RemainingMs: -1,
			PublishedAt: p.now().UTC(),
		}
	}

	showDetails, err := p.settingsRepo.GetBool(database.SettingShowDetails, true)
	if err != nil {
		slog.Warn("Failed to read show_details setting, using default", "error", err)
	}
	showLocation, err := p.settingsRepo.GetBool(database.SettingShowLocation, true)
	if err != nil {
		slog.Warn("Failed to read show_location setting, using default", "error", err)
	}

	event := selection.Event

	status := "starts in"
	if selection.IsOngoing {
		status = "ends in"
	}

	timeRange := fmt.Sprintf("%s - %s",
		event.StartTime.In(time.Local).Format("15:04"),
		event.EndTime.In(time.Local).Format("15:04"))

	summaryLine := fmt.Sprintf("%s - %s %s", event.Summary, status, formatRemaining(selection.TimeRemaining))
	if showDetails {
		summaryLine += "\n" + timeRange
		if showLocation && event.Location != "" {
			summaryLine += " @ " + event.Location
		}
	}

	return database.Snapshot{
		HasEvent:    true,
		Title:       event.Summary,
		TimeRange:   timeRange,
		Status:      status,
		Location:    event.Location,
		SummaryLine: summaryLine,
		RemainingMs: selection.TimeRemaining.Milliseconds(),
		IsOngoing:   selection.IsOngoing,
		PublishedAt: p.now().UTC(),
	}
}

func formatRemaining(remaining time.Duration) string {
	hours := int64(remaining.Hours())
	minutes := int64(remaining.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d h %d min", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}
