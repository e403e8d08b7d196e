package order

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const idPrefix = "ORD-"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type IDGenerator interface {
	NextID(now time.Time) string
	// Observe reports an id issued in an earlier run.
	Observe(id string)
}

// Sequence issues ORD-<unix millis> ids that never repeat: a call landing in
// the same (or an earlier) millisecond as the previous id takes the next one.
type Sequence struct {
	mu   sync.Mutex
	last int64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) NextID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return fmt.Sprintf("%s%d", idPrefix, ms)
}

// Observe makes the sequence skip past an id issued earlier, e.g. one restored
// from storage. Ids in another format are ignored.
func (s *Sequence) Observe(id string) {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, idPrefix), 10, 64)
	if err != nil || !strings.HasPrefix(id, idPrefix) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.last {
		s.last = n
	}
}
