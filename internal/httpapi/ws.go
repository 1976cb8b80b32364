package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/preplab/preptalk/internal/interview"
	"github.com/preplab/preptalk/internal/protocol"
)

// handleInterviewWS runs a live interview over one websocket connection. The
// protocol is strictly request/response, so a single loop owns both reads and
// writes.
func (s *Server) handleInterviewWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.countSessionEvent("ws_connected")
	defer s.countSessionEvent("ws_disconnected")

	conn.SetReadLimit(2 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	ctx := r.Context()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.writeWS(conn, protocol.ErrorEvent{
				Type:   protocol.TypeErrorEvent,
				Code:   "invalid_client_message",
				Detail: err.Error(),
			})
			continue
		}

		switch msg := parsed.(type) {
		case protocol.ClientStart:
			s.countWSMessage("inbound", protocol.TypeClientStart)
			res, err := s.engine.Start(ctx, startRequestFrom(msg))
			if err != nil {
				s.writeWS(conn, protocol.ErrorEvent{
					Type:   protocol.TypeErrorEvent,
					Code:   "start_failed",
					Detail: err.Error(),
				})
				continue
			}
			s.writeWS(conn, protocol.ServerQuestion{
				Type:      protocol.TypeServerQuestion,
				SessionID: res.SessionID,
				Question:  res.Question,
				AudioData: res.AudioData,
			})

		case protocol.ClientAnswer:
			s.countWSMessage("inbound", protocol.TypeClientAnswer)
			turn, err := s.engine.SubmitAnswer(ctx, submitRequestFrom(msg))
			if err != nil {
				s.writeWS(conn, protocol.ErrorEvent{
					Type:      protocol.TypeErrorEvent,
					SessionID: msg.SessionID,
					Code:      wsErrorCode(err),
					Detail:    err.Error(),
				})
				continue
			}
			payload, err := json.Marshal(turn)
			if err != nil {
				continue
			}
			s.writeWS(conn, protocol.ServerTurn{
				Type:      protocol.TypeServerTurn,
				SessionID: msg.SessionID,
				Turn:      payload,
			})

		case protocol.ClientEnd:
			s.countWSMessage("inbound", protocol.TypeClientEnd)
			summary, err := s.engine.Summary(ctx, msg.SessionID)
			if err != nil {
				s.writeWS(conn, protocol.ErrorEvent{
					Type:      protocol.TypeErrorEvent,
					SessionID: msg.SessionID,
					Code:      wsErrorCode(err),
					Detail:    err.Error(),
				})
				continue
			}
			payload, err := json.Marshal(summary)
			if err != nil {
				continue
			}
			s.writeWS(conn, protocol.ServerSummary{
				Type:      protocol.TypeServerSummary,
				SessionID: msg.SessionID,
				Summary:   payload,
			})
			return
		}
	}
}

func startRequestFrom(msg protocol.ClientStart) interview.StartRequest {
	return interview.StartRequest{
		Role:              msg.Role,
		Seniority:         msg.Seniority,
		PreferredLanguage: msg.PreferredLanguage,
	}
}

func submitRequestFrom(msg protocol.ClientAnswer) interview.SubmitRequest {
	return interview.SubmitRequest{
		SessionID:    msg.SessionID,
		Answer:       msg.Answer,
		VideoFrame:   msg.VideoFrame,
		CodeSolution: msg.CodeSolution,
	}
}

func (s *Server) writeWS(conn *websocket.Conn, msg any) {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(msg); err != nil {
		return
	}
	if t, ok := messageTypeOf(msg); ok {
		s.countWSMessage("outbound", t)
	}
}

func (s *Server) countWSMessage(direction string, t protocol.MessageType) {
	if s.metrics != nil {
		s.metrics.WSMessages.WithLabelValues(direction, string(t)).Inc()
	}
}

func (s *Server) countSessionEvent(event string) {
	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues(event).Inc()
	}
}

func wsErrorCode(err error) string {
	switch respondCodeOf(err) {
	case http.StatusNotFound:
		return "session_not_found"
	case http.StatusConflict:
		return "session_finished"
	default:
		return "internal_error"
	}
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.ClientStart:
		return m.Type, true
	case protocol.ClientAnswer:
		return m.Type, true
	case protocol.ClientEnd:
		return m.Type, true
	case protocol.ServerQuestion:
		return m.Type, true
	case protocol.ServerTurn:
		return m.Type, true
	case protocol.ServerSummary:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
