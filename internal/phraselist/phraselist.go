package phraselist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"phrasecut/internal/services"
)

// Request is one phrase-list row: which recording to search, the phrase to
// locate, a translation carried through untouched for the deck builder, and
// an optional 1-based occurrence ordinal disambiguating repeats.
type Request struct {
	Line        int
	Recording   string
	Phrase      string
	Translation string
	Occurrence  int
}

// Invalid is a row that cannot become a request. It is reported in the
// manifest as a failed request, never dropped silently.
type Invalid struct {
	Line      int
	Recording string
	Phrase    string
	Reason    string
}

// Column names accepted in the header row, per field.
var (
	recordingColumns  = []string{"recording", "file", "source", "lesson"}
	phraseColumns     = []string{"phrase", "front", "text"}
	translationCols   = []string{"translation", "back"}
	occurrenceColumns = []string{"occurrence", "hint"}
)

// ReadFile loads a phrase list from a CSV file. An unreadable file is an
// unrecoverable configuration error: the batch fails fast before any
// recording is processed.
func ReadFile(path string) ([]Request, []Invalid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "phraselist", "open", path, err)
	}
	defer file.Close()
	return Read(file)
}

// Read parses phrase-list rows. Malformed rows come back as Invalid entries;
// only a structurally unreadable stream is an error.
func Read(r io.Reader) ([]Request, []Invalid, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "phraselist", "parse csv", "unreadable phrase list", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	layout, hasHeader := detectLayout(rows[0])
	start := 0
	if hasHeader {
		start = 1
	}

	var requests []Request
	var invalid []Invalid
	for i := start; i < len(rows); i++ {
		line := i + 1
		row := rows[i]
		if isBlank(row) {
			continue
		}

		recording := strings.TrimSpace(layout.field(row, layout.recording))
		phrase := strings.TrimSpace(layout.field(row, layout.phrase))
		translation := strings.TrimSpace(layout.field(row, layout.translation))
		occurrenceRaw := strings.TrimSpace(layout.field(row, layout.occurrence))

		if phrase == "" {
			invalid = append(invalid, Invalid{Line: line, Recording: recording, Reason: "missing phrase text"})
			continue
		}
		if recording == "" {
			invalid = append(invalid, Invalid{Line: line, Phrase: phrase, Reason: "missing recording reference"})
			continue
		}

		occurrence := 0
		if occurrenceRaw != "" {
			parsed, err := strconv.Atoi(occurrenceRaw)
			if err != nil || parsed < 1 {
				invalid = append(invalid, Invalid{
					Line:      line,
					Recording: recording,
					Phrase:    phrase,
					Reason:    fmt.Sprintf("occurrence %q is not a positive integer", occurrenceRaw),
				})
				continue
			}
			occurrence = parsed
		}

		requests = append(requests, Request{
			Line:        line,
			Recording:   recording,
			Phrase:      phrase,
			Translation: translation,
			Occurrence:  occurrence,
		})
	}
	return requests, invalid, nil
}

// layout maps request fields to column positions. -1 means absent.
type layout struct {
	recording   int
	phrase      int
	translation int
	occurrence  int
}

func (l layout) field(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// detectLayout checks whether the first row is a header and maps columns.
// Headerless files use the positional layout recording,phrase,translation,occurrence.
func detectLayout(first []string) (layout, bool) {
	positional := layout{recording: 0, phrase: 1, translation: 2, occurrence: 3}

	mapped := layout{recording: -1, phrase: -1, translation: -1, occurrence: -1}
	for i, cell := range first {
		name := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case contains(recordingColumns, name):
			mapped.recording = i
		case contains(phraseColumns, name):
			mapped.phrase = i
		case contains(translationCols, name):
			mapped.translation = i
		case contains(occurrenceColumns, name):
			mapped.occurrence = i
		}
	}
	if mapped.phrase >= 0 {
		return mapped, true
	}
	return positional, false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
