package model

// SettingCalendar is the key of the calendar settings record.
const SettingCalendar = "calendar"

// Setting is a keyed settings record. Only the calendar key exists today.
type Setting struct {
	Record
	Key             string `json:"key"`
	HighlightedDays []int  `json:"highlightedDays"`
	ClosedWeekdays  []int  `json:"closedWeekdays"`
}

// DefaultCalendar returns the calendar settings used before any are saved.
func DefaultCalendar() Setting {
	return Setting{
		Key:             SettingCalendar,
		HighlightedDays: []int{},
		ClosedWeekdays:  []int{},
	}
}
