package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Handler is a slog.Handler that passes every record to the wrapped handler
// and reports records at or above the threshold that carry an "error"
// attribute to a Sink. The attributes "error_type", "namespace",
// "operation" and "invocation_id" are forwarded as Details.
type Handler struct {
	next      slog.Handler
	sink      Sink
	threshold Severity
	prefix    string
	attrs     []slog.Attr
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler wraps next.
func NewHandler(next slog.Handler, sink Sink, threshold Severity) *Handler {
	return &Handler{next: next, sink: sink, threshold: threshold}
}

func (h *Handler) Enabled(ctx context.Context, l slog.Level) bool {
	return FromLevel(l) >= h.threshold || h.next.Enabled(ctx, l)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var reportErr error
	sev := FromLevel(r.Level)
	if sev >= h.threshold {
		if d, cause := h.extract(r); cause != nil {
			if rerr := h.sink.Report(WithDetails(ctx, d), cause, sev); rerr != nil {
				reportErr = fmt.Errorf("alert sink: %w", rerr)
			}
		}
	}

	var err error
	if h.next.Enabled(ctx, r.Level) {
		err = h.next.Handle(ctx, r)
	}
	if reportErr != nil && h.next.Enabled(ctx, slog.LevelWarn) {
		warn := slog.NewRecord(time.Now(), slog.LevelWarn, "alert sink failed", r.PC)
		warn.AddAttrs(slog.Any("error", reportErr))
		err = errors.Join(err, h.next.Handle(ctx, warn))
	}
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.next = h.next.WithAttrs(attrs)
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.next = h.next.WithGroup(name)
	h2.prefix = h.prefix + name + "."
	return &h2
}

// extract returns the record's details and its error attribute, nil when
// the record carries none.
func (h *Handler) extract(r slog.Record) (Details, error) {
	var err error
	d := Details{Message: r.Message}
	visit := func(a slog.Attr) {
		v := a.Value.Resolve()
		switch a.Key {
		case "error":
			switch v.Kind() {
			case slog.KindAny:
				if e, ok := v.Any().(error); ok && e != nil {
					err = e
				}
			case slog.KindString:
				if s := v.String(); s != "" {
					err = errors.New(s)
				}
			}
		case "error_type":
			d.ErrorType = v.String()
		case "namespace":
			d.Namespace = v.String()
		case "operation":
			d.Operation = v.String()
		case "invocation_id":
			d.InvocationID = v.String()
		}
	}
	for _, a := range h.attrs {
		visit(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		visit(slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
		return true
	})
	if err == nil {
		return Details{}, nil
	}
	if d.ErrorType == "" {
		d.ErrorType = fmt.Sprintf("%T", err)
	}
	return d, err
}
