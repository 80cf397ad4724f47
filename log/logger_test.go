package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pithecene-io/lightbox/types"
)

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("invalid JSON line %q: %v", line, err)
	}
	return entry
}

func TestLogger_SessionAndScopeFields(t *testing.T) {
	var buf bytes.Buffer
	l := newLoggerWithWriter("sess-1", &buf).WithScope(types.Scope{Kind: types.ScopePeerPhotos, PeerID: 42})

	l.Info("viewer opened", map[string]any{"message_id": 17})

	entry := decode(t, strings.TrimSpace(buf.String()))
	if entry["session_id"] != "sess-1" {
		t.Errorf("session_id = %v", entry["session_id"])
	}
	if entry["scope"] != "peer:42" {
		t.Errorf("scope = %v", entry["scope"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["message_id"] != float64(17) {
		t.Errorf("fields = %v", entry["fields"])
	}
}

func TestLogger_StandaloneScopeAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	l := newLoggerWithWriter("sess-2", &buf).WithScope(types.Scope{})
	l.Debug("standalone", nil)

	entry := decode(t, strings.TrimSpace(buf.String()))
	if _, ok := entry["scope"]; ok {
		t.Errorf("unexpected scope field: %v", entry["scope"])
	}
}

func TestLogger_WithOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := newLoggerWithWriter("sess-3", &first).WithOutput(&second)
	l.Warn("moved", nil)

	if first.Len() != 0 {
		t.Errorf("original writer got %q", first.String())
	}
	if entry := decode(t, strings.TrimSpace(second.String())); entry["session_id"] != "sess-3" {
		t.Errorf("session_id lost: %v", entry)
	}
}

func TestLogger_NilAndNopAreSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored", nil)
	l.Error("ignored", map[string]any{"k": 1})
	l.Sugar().Infof("ignored %d", 1)
	if err := l.Sync(); err != nil {
		t.Errorf("Sync on nil = %v", err)
	}

	Nop().Warn("ignored", nil)
}

func TestLogger_NilWithOutputStaysSilent(t *testing.T) {
	var l *Logger
	var buf bytes.Buffer
	got := l.WithOutput(&buf)
	got.Warn("ignored", nil)
	if got != nil {
		t.Errorf("WithOutput on nil = %v, want nil", got)
	}
	if buf.Len() != 0 {
		t.Errorf("nil logger wrote %q", buf.String())
	}
}
