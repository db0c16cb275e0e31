package constants

const (
	SettingDefaultFilter = "default_filter"
	SettingHistoryLimit  = "history_limit"
	SettingTimezone      = "timezone"

	// Default Settings Values
	DefaultFilter       = "all"
	DefaultHistoryLimit = 20
	DefaultTimezone     = "Local" // Use system local timezone by default
)
