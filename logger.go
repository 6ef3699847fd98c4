package dbal

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntryType marks what kind of event a log entry records. The zero value is
// deliberately untyped; some connection events are recorded without a type.
type EntryType string

const (
	EntryConnection EntryType = "connection"
	EntryQuery      EntryType = "query"
)

// LogEntry is a timed record of one connection-establishment or
// statement-execution event. It is owned by the Logger that created it.
type LogEntry struct {
	ID             uuid.UUID
	ConnectionName string
	Statement      string
	Params         BindParameterList
	Trace          string
	Type           EntryType
	StartedAt      time.Time
	EndedAt        time.Time

	onEnd func(*LogEntry)
}

// End marks the entry as completed. The end timestamp is set exactly once;
// later calls are no-ops.
func (e *LogEntry) End() {
	if e == nil || !e.EndedAt.IsZero() {
		return
	}

	e.EndedAt = time.Now()

	if e.onEnd != nil {
		e.onEnd(e)
	}
}

func (e *LogEntry) Duration() time.Duration {
	if e.EndedAt.IsZero() {
		return 0
	}

	return e.EndedAt.Sub(e.StartedAt)
}

// Logger records connection and query events. Implementations append entries
// in creation order and never drop them.
type Logger interface {
	NewEntry(connectionName string, statement string, params BindParameterList, trace string, typ EntryType) *LogEntry
	Entries() []*LogEntry
}

// MemoryLog is an append-only in-memory Logger.
type MemoryLog struct {
	entries []*LogEntry
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) NewEntry(connectionName string, statement string, params BindParameterList, trace string, typ EntryType) *LogEntry {
	var entry = &LogEntry{
		ID:             newEntryID(),
		ConnectionName: connectionName,
		Statement:      statement,
		Params:         params,
		Trace:          trace,
		Type:           typ,
		StartedAt:      time.Now(),
	}

	l.entries = append(l.entries, entry)
	return entry
}

func (l *MemoryLog) Entries() []*LogEntry {
	return l.entries
}

// SlogLog decorates another Logger and emits every completed entry through a
// *slog.Logger as well.
type SlogLog struct {
	inner  Logger
	logger *slog.Logger
	level  slog.Level
}

func NewSlogLog(inner Logger, logger *slog.Logger, level slog.Level) *SlogLog {
	return &SlogLog{inner: inner, logger: logger, level: level}
}

func (l *SlogLog) NewEntry(connectionName string, statement string, params BindParameterList, trace string, typ EntryType) *LogEntry {
	var entry = l.inner.NewEntry(connectionName, statement, params, trace, typ)
	var prev = entry.onEnd

	entry.onEnd = func(e *LogEntry) {
		if prev != nil {
			prev(e)
		}

		if !l.logger.Enabled(context.Background(), l.level) {
			return
		}

		l.logger.Log(
			context.Background(),
			l.level,
			e.Statement,
			"connection", e.ConnectionName,
			"type", string(e.Type),
			"params", e.Params.LogValue(),
			"duration", e.Duration(),
		)
	}

	return entry
}

func (l *SlogLog) Entries() []*LogEntry {
	return l.inner.Entries()
}

func newEntryID() uuid.UUID {
	id, err := uuid.NewV7()

	if err != nil {
		return uuid.New()
	}

	return id
}

// callerTrace captures a short diagnostic trace of the frames above dbal.
func callerTrace(skip int) string {
	var pcs [8]uintptr
	var n = runtime.Callers(skip+2, pcs[:])

	if n == 0 {
		return ""
	}

	var (
		frames = runtime.CallersFrames(pcs[:n])
		parts  []string
	)

	for {
		frame, more := frames.Next()

		if len(frame.Function) > 0 {
			parts = append(parts, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		}

		if !more {
			break
		}
	}

	return strings.Join(parts, " <- ")
}
