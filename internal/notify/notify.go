// Package notify sends desktop notifications over D-Bus.
package notify

import (
	"time"

	"github.com/llehouerou/soundplay/internal/meta"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

const nowPlayingTimeout = 5 * time.Second

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// NowPlaying describes the file a session starts with.
func NowPlaying(info meta.Info) Notification {
	body := info.Artist
	if info.Album != "" {
		if body != "" {
			body += " - "
		}
		body += info.Album
	}
	return Notification{
		Title:   info.DisplayTitle(),
		Body:    body,
		Icon:    meta.CoverFile(info.Path),
		Timeout: int32(nowPlayingTimeout / time.Millisecond),
		Urgency: UrgencyLow,
	}
}

// Failure reports a playback error, replacing the notification with the
// given ID when it is non-zero.
func Failure(info meta.Info, msg string, replaces uint32) Notification {
	return Notification{
		Title:      info.DisplayTitle(),
		Body:       msg,
		Icon:       "dialog-error",
		Timeout:    -1,
		ReplacesID: replaces,
		Urgency:    UrgencyCritical,
	}
}
