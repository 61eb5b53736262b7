package gvl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReportSink persists or emits a finished Report.
type ReportSink interface {
	Write(report Report) error
}

// NewReportSink writes to path, or to stdout when path is empty.
func NewReportSink(path string) ReportSink {
	if path == "" {
		return NewWriterSink(os.Stdout)
	}
	return &fileSink{path: path}
}

// NewWriterSink writes every report as one line of JSON.
func NewWriterSink(w io.Writer) ReportSink {
	return &writerSink{encoder: json.NewEncoder(w)}
}

type writerSink struct {
	encoder *json.Encoder
}

func (s *writerSink) Write(report Report) error {
	return s.encoder.Encode(report)
}

// fileSink replaces the file atomically so readers never see a partial report.
type fileSink struct {
	path string
}

func (s *fileSink) Write(report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("Failed to marshal report: %v", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("Failed to create temporary report file next to %s: %v", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("Failed to write report to %s: %v", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("Failed to write report to %s: %v", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("Failed to replace report %s: %v", s.path, err)
	}
	return nil
}
