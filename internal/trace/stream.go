package trace

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// StreamTracer writes events as they arrive. Output is buffered; errors
// and heartbeats flush right away so a hung build still shows them.
type StreamTracer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	level  Level
	format Format
}

// NewStreamTracer wraps w. closer, when non-nil, is closed by Close.
func NewStreamTracer(w io.Writer, closer io.Closer, level Level, format Format) *StreamTracer {
	return &StreamTracer{
		w:      bufio.NewWriter(w),
		closer: closer,
		level:  level,
		format: format,
	}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.Accepts(ev) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// ошибки записи трейса не должны ронять компиляцию
	_, _ = t.w.Write(data) //nolint:errcheck
	if ev.Kind == KindError || ev.Kind == KindHeartbeat {
		_ = t.w.Flush() //nolint:errcheck
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Flush()
}

func (t *StreamTracer) Close() error {
	err := t.Flush()
	if t.closer != nil {
		err = errors.Join(err, t.closer.Close())
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
