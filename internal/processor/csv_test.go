package processor_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/lexiscan/lexiscan/internal/processor"
)

func TestRunCSV(t *testing.T) {
	bp := processor.NewBatchProcessor(severityRegistry(t), 4, nopLogger{}, nil)

	input := strings.Join([]string{
		`id,text,author`,
		`1,bad news today,alice`,
		`2,all quiet,bob`,
		`3,bad bad bad,carol`,
	}, "\n")

	var out bytes.Buffer
	rows, err := bp.RunCSV(context.Background(), strings.NewReader(input), &out, processor.CSVOptions{
		Detector:    "flagger",
		Sensitivity: -1,
	})
	if err != nil {
		t.Fatalf("RunCSV: %v", err)
	}
	if rows != 3 {
		t.Errorf("rows = %d, want 3", rows)
	}

	records, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("output has %d rows, want header + 3", len(records))
	}

	header := records[0]
	if header[0] != "text" || header[1] != "classification" {
		t.Errorf("unexpected header: %v", header)
	}

	wantTexts := []string{"bad news today", "all quiet", "bad bad bad"}
	wantLabels := []string{"flagged", "ok", "flagged"}
	for i, record := range records[1:] {
		if record[0] != wantTexts[i] {
			t.Errorf("row %d text = %q, want %q", i, record[0], wantTexts[i])
		}
		if record[1] != wantLabels[i] {
			t.Errorf("row %d classification = %q, want %q", i, record[1], wantLabels[i])
		}
	}

	// The flagged rows explain themselves.
	if !strings.Contains(records[1][5], `"bad"`) {
		t.Errorf("row 0 matched terms = %q, want to contain \"bad\"", records[1][5])
	}
}

func TestRunCSV_CustomTextColumn(t *testing.T) {
	bp := processor.NewBatchProcessor(severityRegistry(t), 2, nopLogger{}, nil)

	input := "comment,score\nbad comment,5\n"
	var out bytes.Buffer
	rows, err := bp.RunCSV(context.Background(), strings.NewReader(input), &out, processor.CSVOptions{
		Detector:    "flagger",
		Sensitivity: -1,
		TextColumn:  "Comment", // header lookup is case-insensitive
	})
	if err != nil {
		t.Fatalf("RunCSV: %v", err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}

func TestRunCSV_MissingTextColumn(t *testing.T) {
	bp := processor.NewBatchProcessor(severityRegistry(t), 2, nopLogger{}, nil)

	input := "id,body\n1,whatever\n"
	var out bytes.Buffer
	_, err := bp.RunCSV(context.Background(), strings.NewReader(input), &out, processor.CSVOptions{
		Detector:    "flagger",
		Sensitivity: -1,
	})
	if !errors.Is(err, processor.ErrMissingTextColumn) {
		t.Fatalf("err = %v, want ErrMissingTextColumn", err)
	}
}

func TestRunCSV_UnknownDetector(t *testing.T) {
	bp := processor.NewBatchProcessor(severityRegistry(t), 2, nopLogger{}, nil)

	var out bytes.Buffer
	_, err := bp.RunCSV(context.Background(), strings.NewReader("text\nhi\n"), &out, processor.CSVOptions{
		Detector: "missing",
	})
	if !errors.Is(err, processor.ErrUnknownDetector) {
		t.Fatalf("err = %v, want ErrUnknownDetector", err)
	}
}

func TestRunCSV_ShortRow(t *testing.T) {
	bp := processor.NewBatchProcessor(severityRegistry(t), 2, nopLogger{}, nil)

	// Second data row is missing the text column entirely; it scores as
	// empty input rather than failing the run.
	input := "id,text\n1,bad stuff\n2\n"
	var out bytes.Buffer
	rows, err := bp.RunCSV(context.Background(), strings.NewReader(input), &out, processor.CSVOptions{
		Detector:    "flagger",
		Sensitivity: -1,
	})
	if err != nil {
		t.Fatalf("RunCSV: %v", err)
	}
	if rows != 2 {
		t.Errorf("rows = %d, want 2", rows)
	}

	records, readErr := csv.NewReader(&out).ReadAll()
	if readErr != nil {
		t.Fatalf("parse output: %v", readErr)
	}
	if got := records[2][6]; got != "true" {
		t.Errorf("empty_input = %q, want true", got)
	}
}

func TestRunCSV_Throttled(t *testing.T) {
	bp := processor.NewBatchProcessor(severityRegistry(t), 2, nopLogger{}, nil)

	input := "text\nbad\nfine\nbad\n"
	var out bytes.Buffer
	rows, err := bp.RunCSV(context.Background(), strings.NewReader(input), &out, processor.CSVOptions{
		Detector:    "flagger",
		Sensitivity: -1,
		RowsPerSec:  1000,
	})
	if err != nil {
		t.Fatalf("RunCSV: %v", err)
	}
	if rows != 3 {
		t.Errorf("rows = %d, want 3", rows)
	}
}
