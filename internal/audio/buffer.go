package audio

import "sync"

const (
	// MaxUtteranceSeconds bounds how much audio one utterance may hold.
	MaxUtteranceSeconds = 10

	// windowSeconds is how much audio accumulates in the rolling window
	// before a partial transcription pass is worth running.
	windowSeconds = 1

	bytesPerSecond = DefaultSampleRate * 2 // PCM16 mono
)

// Buffer accumulates one session's streamed PCM audio. The full buffer is
// capped; on overflow only the most recent half-cap tail is kept (the last
// five seconds at the default rate) rather than trimming to the cap, so a
// stuck-open microphone cannot grow memory without bound and the retained
// audio always starts well inside the utterance. The rolling window
// collects recent audio for partial transcription feedback.
type Buffer struct {
	mu     sync.Mutex
	full   []byte
	window []byte
	cap    int
}

// NewBuffer creates a buffer capped at MaxUtteranceSeconds of audio.
func NewBuffer() *Buffer {
	return &Buffer{cap: MaxUtteranceSeconds * bytesPerSecond}
}

// Push appends a chunk to both the full buffer and the rolling window.
func (b *Buffer) Push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.full = append(b.full, chunk...)
	if len(b.full) > b.cap {
		// Keep the most recent half of the cap.
		keep := b.cap / 2
		tail := b.full[len(b.full)-keep:]
		b.full = append(make([]byte, 0, b.cap), tail...)
	}

	b.window = append(b.window, chunk...)
}

// Len returns the current size of the full buffer in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.full)
}

// Finalize returns the accumulated utterance and resets both buffers.
func (b *Buffer) Finalize() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.full
	b.full = nil
	b.window = nil
	return out
}

// Window returns and resets the rolling window once it holds at least a
// second of audio. It returns nil while the window is still filling, so
// callers can poll it on every push without extra bookkeeping.
func (b *Buffer) Window() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.window) < windowSeconds*bytesPerSecond {
		return nil
	}
	out := b.window
	b.window = nil
	return out
}
