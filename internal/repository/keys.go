package repository

// Storage key prefixes. Per-user keys are the prefix concatenated with the
// user id; KeyLastUser is global.
const (
	UserKeyPrefix       = "linecal_user_"
	SchedulesKeyPrefix  = "linecal_schedules_"
	CategoriesKeyPrefix = "linecal_categories_"
	PrefsKeyPrefix      = "linecal_prefs_"

	KeyLastUser = "linecal_last_user"
)

// SchedulesKey returns the schedules storage key for a user.
func SchedulesKey(userID string) string { return SchedulesKeyPrefix + userID }

// CategoriesKey returns the categories+tags storage key for a user.
func CategoriesKey(userID string) string { return CategoriesKeyPrefix + userID }

// PrefsKey returns the preferences storage key for a user.
func PrefsKey(userID string) string { return PrefsKeyPrefix + userID }

// UserKeys lists every per-user key for wholesale removal.
func UserKeys(userID string) []string {
	return []string{
		UserKeyPrefix + userID,
		SchedulesKey(userID),
		CategoriesKey(userID),
		PrefsKey(userID),
	}
}
