package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientStart    MessageType = "client_start"
	TypeClientAnswer   MessageType = "client_answer"
	TypeClientEnd      MessageType = "client_end"
	TypeServerQuestion MessageType = "server_question"
	TypeServerTurn     MessageType = "server_turn"
	TypeServerSummary  MessageType = "server_summary"
	TypeErrorEvent     MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientStart opens an interview over the socket.
type ClientStart struct {
	Type              MessageType `json:"type"`
	Role              string      `json:"role"`
	Seniority         string      `json:"seniority"`
	PreferredLanguage string      `json:"preferred_language,omitempty"`
}

// ClientAnswer submits one answer for the pending question, optionally with a
// webcam frame and a coding solution.
type ClientAnswer struct {
	Type         MessageType `json:"type"`
	SessionID    string      `json:"session_id"`
	Answer       string      `json:"answer"`
	VideoFrame   string      `json:"video_frame,omitempty"`
	CodeSolution string      `json:"code_solution,omitempty"`
}

// ClientEnd asks for the summary and closes the interview early.
type ClientEnd struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
}

// ServerQuestion announces the next question to ask, including the opener.
type ServerQuestion struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Question  string      `json:"question"`
	AudioData string      `json:"audio_data,omitempty"`
}

// ServerTurn carries the evaluation of the answer just submitted. Payload is
// the engine's turn result verbatim.
type ServerTurn struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"session_id"`
	Turn      json.RawMessage `json:"turn"`
}

// ServerSummary closes the interview with the final report.
type ServerSummary struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"session_id"`
	Summary   json.RawMessage `json:"summary"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail"`
}

// ParseClientMessage decodes and validates one inbound websocket frame.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientStart:
		var msg ClientStart
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Role == "" || msg.Seniority == "" {
			return nil, errors.New("invalid client_start")
		}
		return msg, nil
	case TypeClientAnswer:
		var msg ClientAnswer
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Answer == "" {
			return nil, errors.New("invalid client_answer")
		}
		return msg, nil
	case TypeClientEnd:
		var msg ClientEnd
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" {
			return nil, errors.New("invalid client_end")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
