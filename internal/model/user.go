package model

// Profile is the identity supplied by the external login collaborator.
type Profile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl"`
	StatusMessage string `json:"statusMessage"`
}

// NotificationPrefs controls reminder delivery defaults.
type NotificationPrefs struct {
	Enabled             bool `json:"enabled"`
	DefaultReminderTime int  `json:"defaultReminderTime"`
	Sound               bool `json:"sound"`
}

// Preferences are per-user settings, merged over defaults on load.
type Preferences struct {
	DefaultView   ViewMode          `json:"defaultView"`
	WeekStartsOn  int               `json:"weekStartsOn"`
	TimeFormat    string            `json:"timeFormat"`
	Language      string            `json:"language"`
	Theme         string            `json:"theme"`
	Notifications NotificationPrefs `json:"notifications"`
}

// DefaultPreferences returns the settings applied to a fresh user.
func DefaultPreferences() Preferences {
	return Preferences{
		DefaultView:  ViewMonth,
		WeekStartsOn: 0,
		TimeFormat:   "24h",
		Language:     "ja",
		Theme:        "light",
		Notifications: NotificationPrefs{
			Enabled:             true,
			DefaultReminderTime: 15,
			Sound:               true,
		},
	}
}
