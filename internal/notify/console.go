package notify

import (
	"linecal/internal/log"
)

// Console writes notifications to the application log. It is the local
// channel used when no push transport is configured; permission is always
// granted.
type Console struct{}

func NewConsole() *Console { return &Console{} }

func (c *Console) RequestPermission() Permission { return PermissionGranted }

func (c *Console) Permission() Permission { return PermissionGranted }

func (c *Console) Show(title, body string, meta Metadata) bool {
	log.Info("notification", "title", title, "body", body, "schedule", meta.ScheduleID)
	return true
}
