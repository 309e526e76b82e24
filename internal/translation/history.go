package translation

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nadzzz/polyglot/internal/message"
	"github.com/nadzzz/polyglot/internal/session"
)

// ErrUnsupportedFormat is returned by ExportHistory for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// summaryRunes is how much of each side the history listing shows.
const summaryRunes = 30

// ExportFileName is the download name of the last translation.
const ExportFileName = "traduction.txt"

// List returns the history newest first, with both sides cut to 30 runes.
func List(st *session.State) []message.HistoryEntry {
	out := make([]message.HistoryEntry, 0, len(st.History))
	for i := len(st.History) - 1; i >= 0; i-- {
		rec := st.History[i]
		out = append(out, message.HistoryEntry{
			Clock:             rec.Time.Format("15:04"),
			SourceSummary:     truncate(rec.Source, summaryRunes),
			TranslatedSummary: truncate(rec.Translated, summaryRunes),
			Record:            rec,
		})
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ExportText returns the last translation as the plain-text download.
func ExportText(st *session.State) ([]byte, error) {
	if st.LastResult == nil {
		return nil, ErrNoResult
	}
	return []byte(st.LastResult.Text), nil
}

// ExportHistory serializes the full history, oldest first, as "json" or
// "yaml". It returns the payload and its content type.
func ExportHistory(st *session.State, format string) ([]byte, string, error) {
	records := st.History
	if records == nil {
		records = []session.Record{}
	}
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encoding history: %w", err)
		}
		return data, "application/json", nil
	case "yaml", "yml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, "", fmt.Errorf("encoding history: %w", err)
		}
		return data, "application/yaml", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
