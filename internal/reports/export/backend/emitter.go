package backend

import (
	"io"
	"sync"
)

// DefaultChunkSize caps the size of a single EventData chunk
const DefaultChunkSize = 16 * 1024

// emitter owns the event channel of a context and guarantees a single
// terminal event followed by close.
type emitter struct {
	events    chan Event
	chunkSize int
	failed    bool
	once      sync.Once
}

func newEmitter() *emitter {
	return &emitter{
		// room for a queued build error and the terminal event
		events:    make(chan Event, 4),
		chunkSize: DefaultChunkSize,
	}
}

// Events returns the emission channel
func (e *emitter) Events() <-chan Event {
	return e.events
}

// fail queues a build-time error. Only the first one is kept.
func (e *emitter) fail(err error) {
	if e.failed || err == nil {
		return
	}
	e.failed = true
	e.events <- Event{Kind: EventError, Err: err}
}

// Abort emits err unless an error is already queued, then closes the channel
func (e *emitter) Abort(err error) {
	e.once.Do(func() {
		e.fail(err)
		close(e.events)
	})
}

// finish renders the document on its own goroutine, streaming chunks.
// If a build error is already queued nothing is rendered.
func (e *emitter) finish(render func(w io.Writer) error, release func()) {
	e.once.Do(func() {
		if e.failed {
			if release != nil {
				release()
			}
			close(e.events)
			return
		}
		go func() {
			defer close(e.events)
			if release != nil {
				defer release()
			}
			if err := render(&chunkWriter{events: e.events, size: e.chunkSize}); err != nil {
				e.events <- Event{Kind: EventError, Err: err}
				return
			}
			e.events <- Event{Kind: EventEnd}
		}()
	})
}

// chunkWriter turns writes into EventData chunks. Bytes are copied because
// renderers reuse their buffers.
type chunkWriter struct {
	events chan<- Event
	size   int
}

// Write implements io.Writer
func (w *chunkWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		size := len(p)
		if w.size > 0 && size > w.size {
			size = w.size
		}
		chunk := make([]byte, size)
		copy(chunk, p[:size])
		w.events <- Event{Kind: EventData, Chunk: chunk}
		p = p[size:]
	}
	return n, nil
}
