// Package alert forwards logged errors to an external sink. Sinks attach to
// the logging pipeline through Handler, so reporting stays out of the
// registration and dispatch paths.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scbrown/newman/internal/model"
)

// Severity is the importance of a reported error.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return model.SeverityInfo
	case Warning:
		return model.SeverityWarning
	case Error:
		return model.SeverityError
	case Critical:
		return model.SeverityCritical
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Level is the lowest slog level mapped to s.
func (s Severity) Level() slog.Level {
	switch s {
	case Info:
		return slog.LevelInfo
	case Warning:
		return slog.LevelWarn
	case Critical:
		return slog.LevelError + 4
	}
	return slog.LevelError
}

// FromLevel maps a slog level to a severity. Levels above error are critical.
func FromLevel(l slog.Level) Severity {
	switch {
	case l > slog.LevelError:
		return Critical
	case l >= slog.LevelError:
		return Error
	case l >= slog.LevelWarn:
		return Warning
	}
	return Info
}

// ParseSeverity maps a severity name to a Severity. The empty string is
// Error.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", model.SeverityError:
		return Error, nil
	case model.SeverityInfo:
		return Info, nil
	case model.SeverityWarning, "warn":
		return Warning, nil
	case model.SeverityCritical:
		return Critical, nil
	}
	return Error, fmt.Errorf("unknown severity %q", s)
}

// Sink receives error reports.
type Sink interface {
	Report(ctx context.Context, err error, sev Severity) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, err error, sev Severity) error

func (f SinkFunc) Report(ctx context.Context, err error, sev Severity) error {
	return f(ctx, err, sev)
}

// Details is the context a log record carried alongside its error.
type Details struct {
	Message      string
	ErrorType    string
	Namespace    string
	Operation    string
	InvocationID string
}

type detailsKey struct{}

// WithDetails returns a context carrying d for sinks to read.
func WithDetails(ctx context.Context, d Details) context.Context {
	return context.WithValue(ctx, detailsKey{}, d)
}

// DetailsFrom returns the details stored by WithDetails.
func DetailsFrom(ctx context.Context) (Details, bool) {
	d, ok := ctx.Value(detailsKey{}).(Details)
	return d, ok
}
