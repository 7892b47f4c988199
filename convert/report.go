package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"css3d/rewrite"
	"css3d/transform"
)

// fileReport is an outcome of processing single stylesheet.
type fileReport struct {
	File        string                 `json:"file"`
	Output      string                 `json:"output,omitempty"`
	Stats       rewrite.Stats          `json:"stats"`
	Entries     []rewrite.LogEntry     `json:"entries"`
	Diagnostics []transform.Diagnostic `json:"diagnostics"`
	Error       string                 `json:"error,omitempty"`

	rendered []byte // resulting stylesheet in dry-run mode
}

func newFileReport(src source) *fileReport {
	return &fileReport{
		File:        src.path,
		Entries:     make([]rewrite.LogEntry, 0),
		Diagnostics: make([]transform.Diagnostic, 0),
	}
}

// runReport is JSON document describing the whole run.
type runReport struct {
	Run     uuid.UUID     `json:"run"`
	Started time.Time     `json:"started"`
	Elapsed string        `json:"elapsed"`
	Totals  rewrite.Stats `json:"totals"`
	Failed  int           `json:"failed"`
	Files   []*fileReport `json:"files"`
}

func newRunReport(run uuid.UUID, started time.Time, files []*fileReport) *runReport {
	r := &runReport{
		Run:     run,
		Started: started,
		Elapsed: time.Since(started).Round(time.Millisecond).String(),
		Files:   make([]*fileReport, 0, len(files)),
	}
	for _, f := range files {
		if f == nil {
			// never started, context was cancelled
			continue
		}
		r.Totals.Add(f.Stats)
		if f.Error != "" {
			r.Failed++
		}
		r.Files = append(r.Files, f)
	}
	return r
}

func (r *runReport) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unable to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

func (r *runReport) writeFile(path string) error {
	data, err := r.marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}
