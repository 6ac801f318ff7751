package ui

// DefaultLogCapacity is the number of log lines the dashboard keeps.
const DefaultLogCapacity = 500

// LogBuffer is a fixed-capacity FIFO of log lines. When full, adding a line
// evicts the oldest one. It is not safe for concurrent use.
type LogBuffer struct {
	lines []string
	start int
	size  int
}

// NewLogBuffer creates a buffer holding at most capacity lines. A
// non-positive capacity selects DefaultLogCapacity.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogBuffer{lines: make([]string, capacity)}
}

// Add appends line, evicting the oldest line when the buffer is full.
func (b *LogBuffer) Add(line string) {
	capacity := len(b.lines)
	if b.size < capacity {
		b.lines[(b.start+b.size)%capacity] = line
		b.size++
		return
	}
	b.lines[b.start] = line
	b.start = (b.start + 1) % capacity
}

// Len returns the number of buffered lines.
func (b *LogBuffer) Len() int { return b.size }

// Cap returns the buffer capacity.
func (b *LogBuffer) Cap() int { return len(b.lines) }

// Lines returns a copy of the buffered lines, oldest first.
func (b *LogBuffer) Lines() []string {
	out := make([]string, b.size)
	for i := range out {
		out[i] = b.lines[(b.start+i)%len(b.lines)]
	}
	return out
}
