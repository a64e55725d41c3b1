package constants

// Canonical event-record field names. Order is fixed and shared by the JSON
// and CSV renderings; the legacy rendering swaps start_time/end_time for
// start/end but keeps the same positions.
const (
	FieldEvent       = "event"
	FieldDay         = "day"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldStart       = "start"
	FieldEnd         = "end"
	FieldDuration    = "duration"
	FieldShipCargo   = "ship_cargo"
	FieldLayoffTime  = "layoff_time"
	FieldDescription = "description"
	FieldFilename    = "filename"
)

// NotAvailable is the sentinel default for ship_cargo and layoff_time.
const NotAvailable = "N/A"
