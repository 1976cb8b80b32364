package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageStart(t *testing.T) {
	raw := []byte(`{"type":"client_start","role":"backend engineer","seniority":"senior","preferred_language":"go"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	start, ok := msg.(ClientStart)
	if !ok {
		t.Fatalf("message type = %T, want ClientStart", msg)
	}
	if start.Role != "backend engineer" || start.Seniority != "senior" {
		t.Fatalf("unexpected start: %+v", start)
	}
	if start.PreferredLanguage != "go" {
		t.Fatalf("PreferredLanguage = %q, want %q", start.PreferredLanguage, "go")
	}
}

func TestParseClientMessageAnswer(t *testing.T) {
	raw := []byte(`{"type":"client_answer","session_id":"s1","answer":"Because latency matters.","video_frame":"AQID"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	answer, ok := msg.(ClientAnswer)
	if !ok {
		t.Fatalf("message type = %T, want ClientAnswer", msg)
	}
	if answer.SessionID != "s1" || answer.VideoFrame != "AQID" {
		t.Fatalf("unexpected answer: %+v", answer)
	}
}

func TestParseClientMessageEnd(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"client_end","session_id":"s1"}`))
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}
	if _, ok := msg.(ClientEnd); !ok {
		t.Fatalf("message type = %T, want ClientEnd", msg)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsInvalidAnswer(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"client_answer","session_id":"","answer":""}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseClientMessageRejectsInvalidStart(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"client_start","role":""}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}
