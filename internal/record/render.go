package record

import "github.com/Sourabsb/tbi-hackathon/constants"

// Profile selects a field-naming convention for rendered output. Both
// profiles share the same field order; only the start/end column names differ.
type Profile int

const (
	// ProfileCanonical renders start_time/end_time (result files, exports).
	ProfileCanonical Profile = iota
	// ProfileLegacy renders start/end (result endpoint, repaired legacy CSVs).
	ProfileLegacy
)

// Header returns the ordered column names for the profile.
func (p Profile) Header() []string {
	start, end := constants.FieldStartTime, constants.FieldEndTime
	if p == ProfileLegacy {
		start, end = constants.FieldStart, constants.FieldEnd
	}
	return []string{
		constants.FieldEvent,
		constants.FieldDay,
		start,
		end,
		constants.FieldDuration,
		constants.FieldShipCargo,
		constants.FieldLayoffTime,
		constants.FieldDescription,
		constants.FieldFilename,
	}
}

// Values returns the record's fields in header order.
func (r Record) Values(Profile) []string {
	return []string{
		r.Event,
		r.Day,
		r.StartTime,
		r.EndTime,
		r.Duration,
		r.ShipCargo,
		r.LayoffTime,
		r.Description,
		r.Filename,
	}
}

// Render produces a keyed rendering of the record under the profile's names.
func (r Record) Render(p Profile) map[string]any {
	m := r.Map()
	if p == ProfileLegacy {
		m[constants.FieldStart] = r.StartTime
		m[constants.FieldEnd] = r.EndTime
		delete(m, constants.FieldStartTime)
		delete(m, constants.FieldEndTime)
	}
	return m
}
