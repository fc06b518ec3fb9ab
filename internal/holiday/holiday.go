package holiday

import "time"

// Type classifies a holiday override record
type Type string

const (
	// TypeHoliday is a statutory holiday (rest) with no explicit marker.
	TypeHoliday Type = "holiday"
	// TypeAdjustedRest is a day explicitly designated as rest by the feed.
	TypeAdjustedRest Type = "adjusted-rest"
	// TypeAdjustedWork is a designated makeup work day.
	TypeAdjustedWork Type = "adjusted-work"
)

// Record is a single per-date override derived from a calendar feed.
// IsWorkDay=true means a designated work/makeup day, false means a
// designated rest day or holiday.
type Record struct {
	Date      time.Time
	Name      string
	IsWorkDay bool
	Type      Type
}

// Source describes one calendar feed location
type Source struct {
	// ID is the preference value selecting this source.
	ID string
	// Name is a human-friendly label for logging and display.
	Name string
	// URL is the feed endpoint.
	URL string
	// Tagged reports whether the feed carries work/rest markers in its
	// event text. Untagged feeds classify every event as a rest day.
	Tagged bool
}

// PreferenceNone disables holiday overrides entirely; selecting it
// clears the store.
const PreferenceNone = "none"

// presets maps the holiday source preference to built-in feed locations
var presets = map[string]Source{
	"cn": {
		ID:     "cn",
		Name:   "China mainland",
		URL:    "https://calendars.icloud.com/holidays/cn_zh.ics",
		Tagged: true,
	},
	"hk": {
		ID:     "hk",
		Name:   "Hong Kong",
		URL:    "https://calendars.icloud.com/holidays/hk_zh.ics",
		Tagged: false,
	},
}

// SourceFor returns the preset source for a preference value
func SourceFor(preference string) (Source, bool) {
	src, ok := presets[preference]
	return src, ok
}

// Presets returns the known preference values
func Presets() []string {
	return []string{"cn", "hk"}
}
