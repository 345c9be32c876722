package trace

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Heartbeat emits a KindHeartbeat event every interval with the current
// Status. After stallBeats beats with no status change it marks the beat
// as stalled; with link recursion that usually means a capsule is stuck.
type Heartbeat struct {
	tracer   Tracer
	status   *Status
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

const stallBeats = 3

// StartHeartbeat returns nil when tracing is off or interval is zero;
// Stop on nil is fine.
func StartHeartbeat(tracer Tracer, status *Status, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		status:   status,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   time.Now(),
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				GID:    goroutineID(),
				Name:   "heartbeat",
				Detail: h.detail(n),
			})
		}
	}
}

func (h *Heartbeat) detail(n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d", n)
	if st := h.status.String(); st != "" {
		sb.WriteString(" ")
		sb.WriteString(st)
	}
	if idle := h.status.Idle(); idle >= stallBeats*h.interval {
		fmt.Fprintf(&sb, " [stalled %s]", idle.Round(time.Millisecond))
	}
	return sb.String()
}

// Stop ends the loop and waits for it. Safe to call more than once.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
