package forkify

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// OperationLogger is the interface for the state operation journal.
type OperationLogger interface {
	LogOperation(op OperationLog) error
}

// OperationLog represents a single state operation and its outcome.
type OperationLog struct {
	Operation string         `json:"operation"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration_ns"`
	Input     map[string]any `json:"input,omitempty"`
	Output    map[string]any `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// FileOperationLogger accumulates operations and writes them as one JSON document on Flush.
type FileOperationLogger struct {
	operations []OperationLog
	writer     io.Writer
}

// NewFileOperationLogger creates a new buffered journal writing to writer.
func NewFileOperationLogger(writer io.Writer) *FileOperationLogger {
	return &FileOperationLogger{
		operations: make([]OperationLog, 0),
		writer:     writer,
	}
}

// LogOperation buffers the entry (does not flush immediately)
func (l *FileOperationLogger) LogOperation(op OperationLog) error {
	l.operations = append(l.operations, op)
	return nil
}

// Flush writes all buffered operations to the writer.
func (l *FileOperationLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"session": map[string]any{
			"timestamp":  time.Now(),
			"operations": l.operations,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal operation log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write operation log: %w", err)
	}

	l.operations = l.operations[:0]
	return nil
}

// NoOpOperationLogger discards all entries.
type NoOpOperationLogger struct{}

func NewNoOpOperationLogger() *NoOpOperationLogger {
	return &NoOpOperationLogger{}
}

func (nop *NoOpOperationLogger) LogOperation(op OperationLog) error {
	return nil
}

// StreamOperationLogger writes each entry as a JSON line (stdout by default, for Lambda/CloudWatch).
type StreamOperationLogger struct {
	out io.Writer
}

// NewStdoutOperationLogger creates a JSON-lines journal on os.Stdout.
func NewStdoutOperationLogger() *StreamOperationLogger {
	return &StreamOperationLogger{out: os.Stdout}
}

// NewStreamOperationLogger creates a JSON-lines journal on w.
func NewStreamOperationLogger(w io.Writer) *StreamOperationLogger {
	return &StreamOperationLogger{out: w}
}

func (l *StreamOperationLogger) LogOperation(op OperationLog) error {
	data, err := json.Marshal(op)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
