// Package log holds the shared slog logger. Debug and info records
// carry a "section" attribute and are dropped unless their section is
// enabled below; warnings and errors always pass through.
package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

var enabledSections = []string{
	"resolver",
	"types",
}

var level = func() *slog.LevelVar {
	v := &slog.LevelVar{}
	v.Set(slog.LevelDebug)
	return v
}()

// SetLevel changes the minimum level of the default logger.
func SetLevel(l slog.Level) {
	level.Set(l)
}

var LoggerOpts = &slog.HandlerOptions{
	AddSource: true,
	Level:     level,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

var DefaultLogger = slog.New(&sectionHandler{underlying: slog.NewTextHandler(os.Stderr, LoggerOpts)})

func sectionEnabled(section string) bool {
	for _, enabled := range enabledSections {
		if strings.HasPrefix(section, enabled) {
			return true
		}
	}
	return false
}

var _ slog.Handler = &sectionHandler{}

// sectionHandler drops low-level records whose section is not enabled.
// A section can arrive either as a record attribute or earlier via
// Logger.With, in which case it is remembered on the handler.
type sectionHandler struct {
	underlying slog.Handler
	inSection  bool
}

func (h sectionHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.underlying.Enabled(ctx, l)
}

func (h sectionHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		return h.underlying.Handle(ctx, record)
	}
	keep := h.inSection
	if !keep {
		record.Attrs(func(attr slog.Attr) bool {
			if attr.Key == "section" && sectionEnabled(attr.Value.String()) {
				keep = true
			}
			return !keep
		})
	}
	if !keep {
		return nil
	}
	return h.underlying.Handle(ctx, record)
}

func (h sectionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := sectionHandler{inSection: h.inSection}
	kept := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "section" && sectionEnabled(attr.Value.String()) {
			next.inSection = true
			continue
		}
		kept = append(kept, attr)
	}
	next.underlying = h.underlying.WithAttrs(kept)
	return &next
}

func (h sectionHandler) WithGroup(name string) slog.Handler {
	return &sectionHandler{
		underlying: h.underlying.WithGroup(name),
		inSection:  h.inSection,
	}
}
