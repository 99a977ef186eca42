package natsadapter

import (
	"encoding/json"
	"errors"

	nats "github.com/nats-io/nats.go"

	"github.com/jobin-logidots/auth-service/internal/domain"
	"github.com/jobin-logidots/auth-service/internal/tokenverify"
	"github.com/jobin-logidots/auth-service/internal/usecase"
)

// VerifyHandler answers access-token verification requests from sibling
// services so they can authenticate without an HTTP round trip.
type VerifyHandler struct {
	parser    tokenverify.Parser
	respondFn func(msg *nats.Msg, resp verifyResponse)
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	OK        bool        `json:"ok"`
	UserID    uint        `json:"user_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	SessionID uint        `json:"session_id,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func NewVerifyHandler(parser tokenverify.Parser) *VerifyHandler {
	return &VerifyHandler{parser: parser, respondFn: respond}
}

func (h *VerifyHandler) Subscribe(conn *nats.Conn, subject, queue string) error {
	if conn == nil {
		return errors.New("nats connection is nil")
	}
	_, err := conn.QueueSubscribe(subject, queue, h.handle)
	return err
}

func (h *VerifyHandler) handle(msg *nats.Msg) {
	var req verifyRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		h.respondFn(msg, verifyResponse{OK: false, Error: "invalid_payload"})
		return
	}
	result, err := tokenverify.Verify(h.parser, req.Token)
	if err != nil {
		if errors.Is(err, usecase.ErrTokenExpired) {
			h.respondFn(msg, verifyResponse{OK: false, Error: "expired"})
			return
		}
		h.respondFn(msg, verifyResponse{OK: false, Error: "invalid_token"})
		return
	}
	h.respondFn(msg, verifyResponse{OK: true, UserID: result.UserID, Role: result.Role, SessionID: result.SessionID})
}

func respond(msg *nats.Msg, resp verifyResponse) {
	data, _ := json.Marshal(resp)
	_ = msg.Respond(data)
}
