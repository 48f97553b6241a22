package courses

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// RosterKind selects which roster list a CSV import targets.
type RosterKind string

const (
	RosterInstructors RosterKind = "instructors"
	RosterTAs         RosterKind = "tas"
	RosterStudents    RosterKind = "students"
)

// ParseKind maps a path segment to a RosterKind.
func ParseKind(s string) (RosterKind, bool) {
	switch RosterKind(s) {
	case RosterInstructors, RosterTAs, RosterStudents:
		return RosterKind(s), true
	}
	return "", false
}

// RowError records a rejected CSV row.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarizes a roster upload.
type ImportResult struct {
	Processed int        `json:"processed"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors,omitempty"`
}

// Importer ingests roster CSVs. Expected formats (header row skipped):
//
//	instructors: courseName,courseDesc,instructorEmail
//	tas:         courseName,taEmail
//	students:    courseName,studentEmail
type Importer struct {
	store  Store
	logger *zap.Logger
}

// NewImporter creates a roster importer.
func NewImporter(store Store, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{store: store, logger: logger}
}

// Import parses the CSV and applies each row; bad rows are reported in the
// result, they do not abort the rest of the file.
func (imp *Importer) Import(ctx context.Context, kind RosterKind, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	res := &ImportResult{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			res.Processed++
			res.Failed++
			res.Errors = append(res.Errors, RowError{Line: line, Message: "malformed row: " + err.Error()})
			continue
		}
		if line == 1 {
			// header
			continue
		}
		res.Processed++
		if msg := imp.applyRow(ctx, kind, record); msg != "" {
			res.Failed++
			res.Errors = append(res.Errors, RowError{Line: line, Message: msg})
			continue
		}
		res.Succeeded++
	}

	imp.logger.Info("roster import finished",
		zap.String("kind", string(kind)),
		zap.Int("processed", res.Processed),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

func (imp *Importer) applyRow(ctx context.Context, kind RosterKind, record []string) string {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	switch kind {
	case RosterInstructors:
		if len(record) < 3 || record[0] == "" || record[2] == "" {
			return "expected courseName,courseDesc,instructorEmail"
		}
		if err := imp.store.AddInstructor(ctx, record[0], record[1], record[2]); err != nil {
			return fmt.Sprintf("store: %v", err)
		}
	case RosterTAs:
		if len(record) < 2 || record[0] == "" || record[1] == "" {
			return "expected courseName,taEmail"
		}
		if err := imp.store.AddTA(ctx, record[0], record[1]); err != nil {
			return fmt.Sprintf("store: %v", err)
		}
	case RosterStudents:
		if len(record) < 2 || record[0] == "" || record[1] == "" {
			return "expected courseName,studentEmail"
		}
		if err := imp.store.AddStudent(ctx, record[0], record[1]); err != nil {
			return fmt.Sprintf("store: %v", err)
		}
	default:
		return "unknown roster kind"
	}
	return ""
}
