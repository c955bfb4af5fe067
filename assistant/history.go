package assistant

// history holds messages in append order. With a positive limit it acts as
// a ring buffer that evicts the oldest message first.
type history struct {
	limit int
	buf   []Message
	start int // index of the oldest message when the ring is full
}

func newHistory(limit int) *history {
	if limit < 0 {
		limit = 0
	}
	return &history{limit: limit}
}

func (h *history) append(m Message) {
	if h.limit == 0 || len(h.buf) < h.limit {
		h.buf = append(h.buf, m)
		return
	}
	h.buf[h.start] = m
	h.start = (h.start + 1) % h.limit
}

func (h *history) len() int { return len(h.buf) }

// snapshot copies the messages oldest first.
func (h *history) snapshot() []Message {
	out := make([]Message, 0, len(h.buf))
	out = append(out, h.buf[h.start:]...)
	out = append(out, h.buf[:h.start]...)
	return out
}

func (h *history) reset() {
	h.buf = nil
	h.start = 0
}
