// Package diag is this device's diagnostics logger: a slog.Handler that
// tees every record to two sinks instead of one, the way the teacher's
// telemetry.SlogHandler bridges to both a console writer and its OTLP
// queue. Here the second sink is the USB CDC ACM stream rather than a
// network collector -- this device has no network interface, but still
// wants the same log line visible to whichever terminal the user has
// open, console or USB serial.
package diag

import (
	"context"
	"io"
	"log/slog"
)

// Handler bridges log records to a console writer and, when connected, a
// CDC ACM writer. Either writer may be io.Discard.
type Handler struct {
	console slog.Handler
	cdc     slog.Handler
	cdcOn   func() bool
}

// New returns a Handler that always writes to console and writes to cdc
// only while cdcConnected reports true (mirrors checking the CDC DTR
// line before writing, so output never blocks on a host that isn't
// listening). cdcConnected may be nil, meaning cdc is never written.
func New(console, cdc io.Writer, cdcConnected func() bool, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{
		console: slog.NewTextHandler(console, opts),
		cdcOn:   cdcConnected,
	}
	if cdc != nil {
		h.cdc = slog.NewTextHandler(cdc, opts)
	}
	return h
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	err := h.console.Handle(ctx, r)
	if h.cdc != nil && h.cdcOn != nil && h.cdcOn() {
		if cdcErr := h.cdc.Handle(ctx, r); err == nil {
			err = cdcErr
		}
	}
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &Handler{console: h.console.WithAttrs(attrs), cdcOn: h.cdcOn}
	if h.cdc != nil {
		next.cdc = h.cdc.WithAttrs(attrs)
	}
	return next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	next := &Handler{console: h.console.WithGroup(name), cdcOn: h.cdcOn}
	if h.cdc != nil {
		next.cdc = h.cdc.WithGroup(name)
	}
	return next
}
