// Package input turns raw terminal bytes into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a movement key is considered held after its
// last press. It bridges the gaps between terminal auto-repeat bytes.
const keyHoldDuration = 60 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	// Held keys
	Left  bool
	Right bool

	// One-shot keys, set only on the frame their byte arrived
	Start   bool // Space or Enter
	Pause   bool // p or a lone Esc
	Restart bool // r
	Quit    bool // q or Ctrl+C

	// Closed is set once the underlying reader has ended.
	Closed  bool
	Pressed []byte
}

// MoveIntent converts the held keys into a horizontal intent in [-1, 1].
// Holding both directions cancels out.
func (in Input) MoveIntent() float64 {
	intent := 0.0
	if in.Left {
		intent--
	}
	if in.Right {
		intent++
	}
	return intent
}

// keyState tracks the last time each movement key was pressed.
type keyState struct {
	left  time.Time
	right time.Time
}

// Stream delivers input bytes via a channel and tracks held keys.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
func ReadInput(s *Stream) Input {
	var buf []byte

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	return s.apply(buf, time.Now())
}

// ResetKeyInput forgets held keys, so movement does not carry over between
// screens.
func ResetKeyInput(s *Stream) {
	s.state = keyState{}
}

// apply parses buf, updates held-key timestamps and builds the frame's input.
func (s *Stream) apply(buf []byte, now time.Time) Input {
	in := Input{Closed: s.closed, Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			// CSI sequence: ESC [ <code>
			if i+2 < len(buf) && buf[i+1] == '[' {
				switch buf[i+2] {
				case 'C':
					s.state.right = now
				case 'D':
					s.state.left = now
				}
				i += 2
				continue
			}
			in.Pause = true
			continue
		}

		switch b {
		case 'a', 'A', 'j', 'J':
			s.state.left = now
		case 'd', 'D', 'l', 'L':
			s.state.right = now
		case ' ', '\n', '\r':
			in.Start = true
		case 'p', 'P':
			in.Pause = true
		case 'r', 'R':
			in.Restart = true
		case 'q', 'Q', '\x03':
			in.Quit = true
		}
	}

	in.Left = now.Sub(s.state.left) < keyHoldDuration
	in.Right = now.Sub(s.state.right) < keyHoldDuration
	return in
}
