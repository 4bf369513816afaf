// ABOUTME: Tests for the transport control server
// ABOUTME: Tests command dispatch and a websocket round trip
package remote

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

type fakeTransport struct {
	started   bool
	position  int64
	loopStart int64
	loopDur   int64
}

func (f *fakeTransport) Start()          { f.started = true }
func (f *fakeTransport) Stop()           { f.started = false }
func (f *fakeTransport) IsStarted() bool { return f.started }
func (f *fakeTransport) Position() int64 { return f.position }
func (f *fakeTransport) SetTime(s int64) { f.position = s }
func (f *fakeTransport) SetLoop(start, dur int64) {
	f.loopStart = start
	f.loopDur = dur
}

func TestDispatchStartStop(t *testing.T) {
	f := &fakeTransport{}
	s := NewServer(f)

	status := s.dispatch(Command{Type: CmdStart})
	if !f.started || !status.Started {
		t.Error("transport/start must start the transport")
	}

	status = s.dispatch(Command{Type: CmdStop})
	if f.started || status.Started {
		t.Error("transport/stop must stop the transport")
	}
}

func TestDispatchSeekAndLoop(t *testing.T) {
	f := &fakeTransport{}
	s := NewServer(f)

	status := s.dispatch(Command{Type: CmdSeek, Sample: 96000})
	if f.position != 96000 || status.Position != 96000 {
		t.Errorf("seek landed at %d, want 96000", f.position)
	}

	s.dispatch(Command{Type: CmdLoop, Start: 100, Duration: 50})
	if f.loopStart != 100 || f.loopDur != 50 {
		t.Errorf("loop set to (%d, %d), want (100, 50)", f.loopStart, f.loopDur)
	}
}

func TestDispatchRejectsNegativeArguments(t *testing.T) {
	f := &fakeTransport{}
	s := NewServer(f)

	if status := s.dispatch(Command{Type: CmdSeek, Sample: -1}); status.Error == "" {
		t.Error("negative seek must be rejected")
	}
	if status := s.dispatch(Command{Type: CmdLoop, Start: -1}); status.Error == "" {
		t.Error("negative loop start must be rejected")
	}
	if f.position != 0 || f.loopStart != 0 {
		t.Error("rejected commands must not touch the transport")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := NewServer(&fakeTransport{})

	status := s.dispatch(Command{Type: "transport/warp"})
	if status.Error == "" {
		t.Error("unknown commands must report an error")
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	f := &fakeTransport{position: 42}
	s := NewServer(f)

	srv := httptest.NewServer(http.HandlerFunc(s.handleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.WriteJSON(Command{Type: CmdPosition}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var status Status
	if err := conn.ReadJSON(&status); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if status.Position != 42 {
		t.Errorf("status position = %d, want 42", status.Position)
	}
	if status.Session != s.Session() {
		t.Errorf("status session = %q, want %q", status.Session, s.Session())
	}
}
