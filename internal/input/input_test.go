package input

import (
	"bufio"
	"strings"
	"testing"
	"time"
)

func TestApplyKeys(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		intent float64
		start  bool
		pause  bool
		quit   bool
	}{
		{"letters left", "a", -1, false, false, false},
		{"letters right", "l", 1, false, false, false},
		{"arrow left", "\x1b[D", -1, false, false, false},
		{"arrow right", "\x1b[C", 1, false, false, false},
		{"both cancel", "ad", 0, false, false, false},
		{"space starts", " ", 0, true, false, false},
		{"enter starts", "\r", 0, true, false, false},
		{"p pauses", "p", 0, false, true, false},
		{"lone escape pauses", "\x1b", 0, false, true, false},
		{"arrow up ignored", "\x1b[A", 0, false, false, false},
		{"quit", "q", 0, false, false, true},
		{"restart is not start", "r", 0, false, false, false},
		{"ctrl c", "\x03", 0, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Stream{}
			got := s.apply([]byte(tt.in), time.Now())
			if got.MoveIntent() != tt.intent {
				t.Errorf("intent = %v, want %v", got.MoveIntent(), tt.intent)
			}
			if got.Start != tt.start || got.Pause != tt.pause || got.Quit != tt.quit {
				t.Errorf("start/pause/quit = %v/%v/%v, want %v/%v/%v",
					got.Start, got.Pause, got.Quit, tt.start, tt.pause, tt.quit)
			}
		})
	}
}

func TestRestartKey(t *testing.T) {
	s := &Stream{}
	if in := s.apply([]byte("R"), time.Now()); !in.Restart {
		t.Fatalf("restart not reported")
	}
}

func TestHeldKeysExpire(t *testing.T) {
	s := &Stream{}
	now := time.Now()
	s.apply([]byte("d"), now)

	if in := s.apply(nil, now.Add(keyHoldDuration/2)); !in.Right {
		t.Fatalf("right should still be held")
	}
	if in := s.apply(nil, now.Add(keyHoldDuration)); in.Right {
		t.Fatalf("right should have expired")
	}
}

func TestOneShotKeysDoNotRepeat(t *testing.T) {
	s := &Stream{}
	now := time.Now()
	if in := s.apply([]byte("p"), now); !in.Pause {
		t.Fatalf("pause not reported")
	}
	if in := s.apply(nil, now.Add(time.Millisecond)); in.Pause {
		t.Fatalf("pause reported twice for one press")
	}
}

func TestResetKeyInput(t *testing.T) {
	s := &Stream{}
	now := time.Now()
	s.apply([]byte("a"), now)
	ResetKeyInput(s)
	if in := s.apply(nil, now); in.Left {
		t.Fatalf("left survived reset")
	}
}

func TestStreamReportsClose(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("q")))

	deadline := time.After(2 * time.Second)
	sawQuit := false
	for {
		in := ReadInput(s)
		sawQuit = sawQuit || in.Quit
		if in.Closed {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("stream never reported close")
		case <-time.After(time.Millisecond):
		}
	}
	if !sawQuit {
		t.Fatalf("quit byte was lost")
	}
}
