// Package record maps heterogeneous event rows (structuring-provider output,
// user-edited export payloads, legacy persisted files) onto one canonical
// schema. Everything here is a pure transformation.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sourabsb/tbi-hackathon/constants"
)

// Record is the canonical event record. No field is ever absent: missing
// values resolve to "" or the "N/A" sentinel per field.
type Record struct {
	Event       string `json:"event"`
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Duration    string `json:"duration"`
	ShipCargo   string `json:"ship_cargo"`
	LayoffTime  string `json:"layoff_time"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
}

// Accepted source-key aliases per canonical field, in priority order. The
// canonical name comes first so normalizing an already-normalized row is a
// no-op.
var (
	eventAliases       = []string{"event", "Event", "name"}
	dayAliases         = []string{"day", "Day", "date"}
	startTimeAliases   = []string{"start_time", "Start Time", "start_time_iso", "start"}
	endTimeAliases     = []string{"end_time", "End Time", "end_time_iso", "end"}
	durationAliases    = []string{"duration", "Duration"}
	shipCargoAliases   = []string{"ship_cargo", "Ship/Cargo", "ShipCargo", "shipCargo"}
	layoffTimeAliases  = []string{"layoff_time", "Layoff Time", "laytime", "Laytime", "layoff"}
	descriptionAliases = []string{"description", "Description"}
	filenameAliases    = []string{"filename", "Filename", "FileName"}
)

// Normalize produces a fresh canonical Record from an arbitrary row.
func Normalize(row map[string]any) Record {
	start := pick(row, startTimeAliases)
	r := Record{
		Event:       pick(row, eventAliases),
		Day:         resolveDay(pick(row, dayAliases), start),
		StartTime:   start,
		EndTime:     pick(row, endTimeAliases),
		Duration:    collapseSpaces(pick(row, durationAliases)),
		ShipCargo:   pickDefault(row, shipCargoAliases, constants.NotAvailable),
		LayoffTime:  pickDefault(row, layoffTimeAliases, constants.NotAvailable),
		Description: pick(row, descriptionAliases),
		Filename:    pick(row, filenameAliases),
	}
	return r
}

// NormalizeAll normalizes every row, preserving order.
func NormalizeAll(rows []map[string]any) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Normalize(row))
	}
	return out
}

// Map renders the record with canonical field names.
func (r Record) Map() map[string]any {
	return map[string]any{
		constants.FieldEvent:       r.Event,
		constants.FieldDay:         r.Day,
		constants.FieldStartTime:   r.StartTime,
		constants.FieldEndTime:     r.EndTime,
		constants.FieldDuration:    r.Duration,
		constants.FieldShipCargo:   r.ShipCargo,
		constants.FieldLayoffTime:  r.LayoffTime,
		constants.FieldDescription: r.Description,
		constants.FieldFilename:    r.Filename,
	}
}

// pick returns the first non-empty value among the aliases, else "".
func pick(row map[string]any, aliases []string) string {
	for _, k := range aliases {
		if s := stringify(row[k]); s != "" {
			return s
		}
	}
	return ""
}

func pickDefault(row map[string]any, aliases []string, def string) string {
	if s := pick(row, aliases); s != "" {
		return s
	}
	return def
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveDay keeps a plausible direct day value, reformats a timestamp-shaped
// one, and otherwise derives the day from the start_time value.
func resolveDay(day, start string) string {
	if day != "" {
		if len(day) >= 8 && strings.Contains(day, "-") {
			return day
		}
		if t, ok := parseISO(day); ok {
			return t.Format("2006-01-02")
		}
		return day
	}
	if start == "" {
		return ""
	}
	if t, ok := parseISO(start); ok {
		return t.Format("2006-01-02")
	}
	if i := strings.IndexByte(start, ' '); i >= 0 {
		return start[:i]
	}
	return start
}

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseISO(s string) (time.Time, bool) {
	s = strings.Replace(strings.TrimSpace(s), " ", "T", 1)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
