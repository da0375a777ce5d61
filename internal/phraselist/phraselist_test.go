package phraselist

import (
	"errors"
	"strings"
	"testing"

	"phrasecut/internal/services"
)

func TestReadHeaderMapped(t *testing.T) {
	input := strings.Join([]string{
		"file,phrase,translation,occurrence",
		"lesson01,je voudrais un café,I would like a coffee,",
		"lesson01,merci beaucoup,thanks a lot,2",
	}, "\n")

	requests, invalid, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(invalid) != 0 {
		t.Fatalf("invalid rows = %d, want 0", len(invalid))
	}
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}
	first := requests[0]
	if first.Recording != "lesson01" || first.Phrase != "je voudrais un café" {
		t.Errorf("first request = %+v", first)
	}
	if first.Translation != "I would like a coffee" {
		t.Errorf("translation = %q", first.Translation)
	}
	if first.Occurrence != 0 {
		t.Errorf("occurrence = %d, want 0 for blank hint", first.Occurrence)
	}
	if requests[1].Occurrence != 2 {
		t.Errorf("second occurrence = %d, want 2", requests[1].Occurrence)
	}
	if requests[1].Line != 3 {
		t.Errorf("second line = %d, want 3", requests[1].Line)
	}
}

func TestReadHeaderless(t *testing.T) {
	input := "lesson02,s'il vous plaît,please,1\n"

	requests, invalid, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(invalid) != 0 || len(requests) != 1 {
		t.Fatalf("requests = %d invalid = %d, want 1/0", len(requests), len(invalid))
	}
	if requests[0].Occurrence != 1 {
		t.Errorf("occurrence = %d, want 1", requests[0].Occurrence)
	}
}

func TestReadReportsInvalidRows(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		reason string
	}{
		{"missing phrase", "lesson01,,translation,", "missing phrase text"},
		{"missing recording", ",bonjour,hello,", "missing recording reference"},
		{"bad occurrence", "lesson01,bonjour,hello,zero", "not a positive integer"},
		{"negative occurrence", "lesson01,bonjour,hello,-1", "not a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "file,phrase,translation,occurrence\n" + tt.row + "\nlesson01,au revoir,goodbye,\n"
			requests, invalid, err := Read(strings.NewReader(input))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if len(invalid) != 1 {
				t.Fatalf("invalid rows = %d, want 1", len(invalid))
			}
			if !strings.Contains(invalid[0].Reason, tt.reason) {
				t.Errorf("reason = %q, want substring %q", invalid[0].Reason, tt.reason)
			}
			if len(requests) != 1 || requests[0].Phrase != "au revoir" {
				t.Errorf("valid rows after bad row = %+v, want au revoir to survive", requests)
			}
		})
	}
}

func TestReadSkipsBlankRows(t *testing.T) {
	input := "file,phrase\nlesson01,bonjour\n,\n"
	requests, invalid, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(requests) != 1 || len(invalid) != 0 {
		t.Errorf("requests = %d invalid = %d, want 1/0", len(requests), len(invalid))
	}
}

func TestReadFileMissing(t *testing.T) {
	_, _, err := ReadFile("/nonexistent/phrases.csv")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}
