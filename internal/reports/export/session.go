package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"carbon-scribe/project-portal/report-engine/internal/reports/export/backend"
	"carbon-scribe/project-portal/report-engine/pkg/workflows"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrFormatterPanic is returned when a content formatter panics
	ErrFormatterPanic = errors.New("formatter panicked")
	// ErrEmptyOutput is returned when a backend finishes without emitting data
	ErrEmptyOutput = errors.New("backend produced no output")
	// ErrSessionSealed is returned when a block is appended after finalizing began
	ErrSessionSealed = errors.New("document session is sealed")
	// ErrBackendClosed is returned when the event stream closes without a terminal event
	ErrBackendClosed = errors.New("backend closed without a terminal event")
)

// SessionState is the lifecycle state of a document session
type SessionState string

const (
	SessionOpen       SessionState = "open"
	SessionBuilding   SessionState = "building"
	SessionFinalizing SessionState = "finalizing"
	SessionResolved   SessionState = "resolved"
	SessionRejected   SessionState = "rejected"
)

func sessionTransitions() map[SessionState][]SessionState {
	return map[SessionState][]SessionState{
		SessionOpen:       {SessionBuilding, SessionRejected},
		SessionBuilding:   {SessionFinalizing, SessionRejected},
		SessionFinalizing: {SessionResolved, SessionRejected},
		SessionResolved:   {},
		SessionRejected:   {},
	}
}

// Formatter writes one payload through a Writer
type Formatter func(w *Writer)

// Result is the outcome of a resolved session
type Result struct {
	SessionID string
	Data      []byte
	Document  *Document
	Pages     int
}

// session builds one document from open to resolved or rejected
type session struct {
	id     string
	ctx    backend.Context
	doc    *Document
	cfg    Config
	state  *workflows.StateMachine[SessionState]
	logger *zap.Logger
}

func openSession(factory backend.Factory, cfg Config, opts Options, logger *zap.Logger) (*session, error) {
	id := uuid.New().String()
	bctx, err := factory.Open(cfg.backendOptions(opts))
	if err != nil {
		logger.Error("Failed to open backend context", zap.String("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to open backend: %w", err)
	}
	return &session{
		id:     id,
		ctx:    bctx,
		doc:    &Document{},
		cfg:    cfg,
		state:  workflows.NewStateMachine(SessionOpen, sessionTransitions()),
		logger: logger.With(zap.String("session_id", id)),
	}, nil
}

// State returns the current lifecycle state
func (s *session) State() SessionState {
	return s.state.Current()
}

// run executes the formatter, finalizes the backend and waits for the
// assembled output. Any backend error, including one raised while building,
// rejects the session.
func (s *session) run(ctx context.Context, format Formatter) (*Result, error) {
	start := time.Now()
	s.transition(SessionBuilding)

	w := newWriter(s.ctx, s.doc, s.cfg)
	buildErr := s.build(format, w)

	s.doc.seal()
	if buildErr != nil {
		s.ctx.Abort(buildErr)
	} else {
		s.transition(SessionFinalizing)
		s.ctx.End()
	}

	data, err := s.collect(ctx)
	if err == nil && buildErr != nil {
		err = buildErr
	}
	if err == nil && len(data) == 0 {
		err = ErrEmptyOutput
	}
	if err != nil {
		s.transition(SessionRejected)
		s.logger.Error("Export session rejected",
			zap.Int("blocks", s.doc.Len()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	s.transition(SessionResolved)
	s.logger.Info("Export session resolved",
		zap.Int("blocks", s.doc.Len()),
		zap.Int("pages", w.Pages()),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)))

	return &Result{
		SessionID: s.id,
		Data:      data,
		Document:  s.doc,
		Pages:     w.Pages(),
	}, nil
}

// build runs the formatter and turns a panic into an error
func (s *session) build(format Formatter, w *Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFormatterPanic, r)
		}
	}()
	format(w)
	return nil
}

// collect concatenates data chunks until the terminal event. After an error
// the stream is drained so the backend goroutine can exit.
func (s *session) collect(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	events := s.ctx.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil, ErrBackendClosed
			}
			switch ev.Kind {
			case backend.EventData:
				buf.Write(ev.Chunk)
			case backend.EventEnd:
				return buf.Bytes(), nil
			case backend.EventError:
				go drain(events)
				return nil, ev.Err
			}
		case <-ctx.Done():
			go drain(events)
			return nil, ctx.Err()
		}
	}
}

func drain(events <-chan backend.Event) {
	for range events {
	}
}

func (s *session) transition(to SessionState) {
	from := s.state.Current()
	if err := s.state.Transition(to); err != nil {
		s.logger.Warn("Unexpected session transition", zap.String("from", string(from)), zap.String("to", string(to)), zap.Error(err))
		return
	}
	s.logger.Debug("Session state changed", zap.String("from", string(from)), zap.String("to", string(to)))
}
