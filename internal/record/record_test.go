package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAliasResolution(t *testing.T) {
	r := Normalize(map[string]any{
		"Event":      "Loading",
		"Start Time": "2024-01-05 08:00",
		"name":       "X",
	})

	assert.Equal(t, "Loading", r.Event, "Event alias outranks name")
	assert.Equal(t, "2024-01-05 08:00", r.StartTime)
	assert.Equal(t, "2024-01-05", r.Day, "day derived from start time")
}

func TestNormalizeDefaults(t *testing.T) {
	r := Normalize(map[string]any{"event": "Shifting"})

	assert.Equal(t, "N/A", r.ShipCargo)
	assert.Equal(t, "N/A", r.LayoffTime)
	assert.Equal(t, "", r.Day)
	assert.Equal(t, "", r.StartTime)
	assert.Equal(t, "", r.Description)
}

func TestNormalizeEmptyValuesFallThrough(t *testing.T) {
	r := Normalize(map[string]any{
		"event":      "",
		"Event":      "Bunkering",
		"ship_cargo": "",
		"ShipCargo":  "MV Ocean Star / Coal",
	})

	assert.Equal(t, "Bunkering", r.Event)
	assert.Equal(t, "MV Ocean Star / Coal", r.ShipCargo)
}

func TestNormalizeDurationWhitespace(t *testing.T) {
	r := Normalize(map[string]any{"duration": "  2h   30m \n"})
	assert.Equal(t, "2h 30m", r.Duration)
}

func TestResolveDay(t *testing.T) {
	cases := []struct {
		name       string
		day, start string
		want       string
	}{
		{"direct date passes through", "2024-01-05", "", "2024-01-05"},
		{"direct timestamp passes through", "2024-01-05 08:00", "", "2024-01-05 08:00"},
		{"short unparseable day kept raw", "1-5", "", "1-5"},
		{"weekday kept as-is", "Friday", "", "Friday"},
		{"derived from start timestamp", "", "2024-01-05 08:00", "2024-01-05"},
		{"derived from start with seconds", "", "2024-01-05 08:00:30", "2024-01-05"},
		{"unparseable start falls back to prefix", "", "05/01/2024 08:00", "05/01/2024"},
		{"unparseable start without space", "", "garbled", "garbled"},
		{"nothing available", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveDay(tc.day, tc.start))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first := Normalize(map[string]any{
		"Event":       "Cargo Loading Operation",
		"Start Time":  "2024-01-05 08:00",
		"End Time":    "2024-01-05 12:30",
		"Duration":    "4h  30m",
		"Ship/Cargo":  "MV Aurora / Grain",
		"Layoff Time": "30m",
		"Description": "Loading grain into holds 1-3",
		"Filename":    "sof_day1.png",
	})

	again := Normalize(first.Map())
	assert.Equal(t, first, again)

	// The legacy rendering must also round-trip through normalization.
	legacy := Normalize(first.Render(ProfileLegacy))
	assert.Equal(t, first, legacy)
}

func TestProfileHeaders(t *testing.T) {
	assert.Equal(t,
		[]string{"event", "day", "start_time", "end_time", "duration", "ship_cargo", "layoff_time", "description", "filename"},
		ProfileCanonical.Header())
	assert.Equal(t,
		[]string{"event", "day", "start", "end", "duration", "ship_cargo", "layoff_time", "description", "filename"},
		ProfileLegacy.Header())
}

func TestRenderLegacyKeys(t *testing.T) {
	r := Normalize(map[string]any{"start_time": "2024-01-05 08:00", "end_time": "2024-01-05 09:00"})
	m := r.Render(ProfileLegacy)

	assert.Equal(t, "2024-01-05 08:00", m["start"])
	assert.Equal(t, "2024-01-05 09:00", m["end"])
	assert.NotContains(t, m, "start_time")
	assert.NotContains(t, m, "end_time")
}

func TestNormalizeNumericValues(t *testing.T) {
	// JSON numbers arrive as float64; they should stringify, not vanish.
	r := Normalize(map[string]any{"event": "Waiting", "duration": float64(45)})
	assert.Equal(t, "45", r.Duration)
}
