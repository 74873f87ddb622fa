package activity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/roleguard/internal/i18n"
	"github.com/odyssey-erp/roleguard/internal/shared"
)

// Appender persists a rendered audit entry. audit.Service satisfies it.
type Appender interface {
	Append(ctx context.Context, actorID int64, action, description string) error
}

// FailureRecorder receives a signal for every swallowed append failure.
type FailureRecorder interface {
	AuditAppendFailed(kind string)
}

// record is the rendered form of an event, ready to be appended.
type record struct {
	actorID     int64
	action      string
	description string
}

type handlerFunc func(ctx context.Context, actor shared.Actor, ev Event) (record, bool)

// Monitor dispatches lifecycle events to their handlers and appends the result to
// the audit log. Handlers run synchronously on the publishing goroutine.
type Monitor struct {
	appender Appender
	printer  *i18n.Printer
	media    MediaSource
	logger   *slog.Logger
	failures FailureRecorder
	handlers map[Kind]handlerFunc
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithMediaSource sets the collaborator used to resolve attachment file names.
func WithMediaSource(src MediaSource) Option {
	return func(m *Monitor) { m.media = src }
}

// WithFailureRecorder sets the diagnostic sink for swallowed append errors.
func WithFailureRecorder(rec FailureRecorder) Option {
	return func(m *Monitor) { m.failures = rec }
}

// NewMonitor builds the dispatch table. A nil printer renders English descriptions.
func NewMonitor(appender Appender, printer *i18n.Printer, logger *slog.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if printer == nil {
		printer = i18n.NewPrinter("en")
	}
	m := &Monitor{
		appender: appender,
		printer:  printer,
		logger:   logger,
		handlers: make(map[Kind]handlerFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.registerRoleHandlers()
	m.registerContentHandlers()
	m.registerCommentHandlers()
	m.registerUserHandlers()
	m.registerExtensionHandlers()
	m.registerMediaHandlers()
	m.registerStructureHandlers()
	m.registerOptionHandlers()
	return m
}

// Publish renders ev and appends it. Append failures are logged and counted,
// never returned: auditing must not fail the operation that triggered it.
func (m *Monitor) Publish(ctx context.Context, actor shared.Actor, ev Event) {
	if m == nil || ev == nil {
		return
	}
	kind := ev.Kind()
	handler, ok := m.handlers[kind]
	if !ok {
		m.logger.Warn("activity: no handler", slog.String("kind", string(kind)))
		return
	}
	rec, ok := handler(ctx, actor, ev)
	if !ok {
		return
	}
	if m.appender == nil {
		return
	}
	if err := m.appender.Append(ctx, rec.actorID, rec.action, rec.description); err != nil {
		m.logger.Warn("activity: append failed",
			slog.String("kind", string(kind)),
			slog.String("action", rec.action),
			slog.Any("error", err))
		if m.failures != nil {
			m.failures.AuditAppendFailed(string(kind))
		}
	}
}

// Kinds lists the event kinds with a registered handler.
func (m *Monitor) Kinds() []Kind {
	kinds := make([]Kind, 0, len(m.handlers))
	for k := range m.handlers {
		kinds = append(kinds, k)
	}
	return kinds
}

func (m *Monitor) sprintf(key string, args ...any) string {
	return m.printer.Sprintf(key, args...)
}

// on registers a typed handler for kind. The type assertion cannot fail because
// Kind() is defined on the concrete payload type.
func on[T Event](m *Monitor, kind Kind, fn func(ctx context.Context, actor shared.Actor, ev T) (record, bool)) {
	if _, dup := m.handlers[kind]; dup {
		panic(fmt.Sprintf("activity: duplicate handler for %s", kind))
	}
	m.handlers[kind] = func(ctx context.Context, actor shared.Actor, ev Event) (record, bool) {
		typed, ok := ev.(T)
		if !ok {
			return record{}, false
		}
		return fn(ctx, actor, typed)
	}
}

func emit(actor shared.Actor, action, description string) (record, bool) {
	return record{actorID: actor.ID, action: action, description: description}, true
}

func skip() (record, bool) {
	return record{}, false
}
