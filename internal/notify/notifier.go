// Package notify abstracts the notification presentation collaborator:
// permission handling plus delivery of a title/body pair.
package notify

// Permission is the state of the delivery channel.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Metadata accompanies a delivered notification.
type Metadata struct {
	ScheduleID string
	Date       string
	Time       string
}

// Notifier delivers notifications. Show reports success with a boolean so
// batch scheduling can continue past individual failures.
type Notifier interface {
	// RequestPermission asks the channel for delivery rights.
	RequestPermission() Permission
	// Permission returns the current state without prompting.
	Permission() Permission
	// Show delivers a notification; false when unsupported, denied or
	// the delivery itself failed.
	Show(title, body string, meta Metadata) bool
}
