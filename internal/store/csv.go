package store

import (
	"io"
	"strings"

	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

// WriteCSV renders records under the given profile with every field quoted
// unconditionally, matching the legacy persisted files. encoding/csv only
// quotes when it must, so the writer is explicit here.
func WriteCSV(w io.Writer, records []record.Record, p record.Profile) error {
	if err := writeRow(w, p.Header()); err != nil {
		return err
	}
	for _, r := range records {
		if err := writeRow(w, r.Values(p)); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}
