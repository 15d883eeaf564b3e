package interp

// DefaultLineCapacity is the size of the firmware's command buffer.
// At most DefaultLineCapacity-1 characters of a line are kept.
const DefaultLineCapacity = 32

// LineBuffer assembles bytes into lines terminated by '\n' or '\r'.
//
// Once the buffer holds capacity-1 bytes, further bytes are dropped
// without any error until a terminator arrives; the truncated line is
// then dispatched as usual. This bounds memory on garbage input and is
// the documented behavior of the serial protocol.
type LineBuffer struct {
	buf     []byte
	dropped int
}

// NewLineBuffer creates a LineBuffer with the given capacity.
// Capacity below 2 falls back to DefaultLineCapacity.
func NewLineBuffer(capacity int) *LineBuffer {
	if capacity < 2 {
		capacity = DefaultLineCapacity
	}
	return &LineBuffer{buf: make([]byte, 0, capacity-1)}
}

// Push consumes one byte. It returns the completed line and true
// when b terminates a non-empty line.
func (b *LineBuffer) Push(c byte) (string, bool) {
	if b.buf == nil {
		b.buf = make([]byte, 0, DefaultLineCapacity-1)
	}
	switch c {
	case '\n', '\r':
		if len(b.buf) == 0 {
			return "", false
		}
		line := string(b.buf)
		b.Reset()
		return line, true
	}
	if len(b.buf) < cap(b.buf) {
		b.buf = append(b.buf, c)
	} else {
		b.dropped++
	}
	return "", false
}

// Len returns the number of buffered bytes.
func (b *LineBuffer) Len() int {
	return len(b.buf)
}

// Dropped returns how many bytes were dropped from the pending line.
func (b *LineBuffer) Dropped() int {
	return b.dropped
}

// Reset discards the pending line.
func (b *LineBuffer) Reset() {
	b.buf = b.buf[:0]
	b.dropped = 0
}
