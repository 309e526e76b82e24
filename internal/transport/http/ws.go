package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/nadzzz/polyglot/internal/message"
	"github.com/nadzzz/polyglot/internal/observe"
	"github.com/nadzzz/polyglot/internal/session"
)

// wsTurn is one frame on the chat socket. Clients send {"text": ...};
// the server answers with the assistant turn or an error.
type wsTurn struct {
	Role    session.Role     `json:"role,omitempty"`
	Text    string           `json:"text,omitempty"`
	Notices []message.Notice `json:"notices,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// chatSocket runs a chat over a WebSocket, one JSON turn per message.
//
// @Summary     Chat over WebSocket
// @Description Send {"text": "..."} frames; each is answered with {"role": "assistant", "text": "..."}.
// @Tags        chat
// @Param       id  path  string  true  "Session ID"
// @Router      /v1/sessions/{id}/chat/ws [get]
func (h *handlers) chatSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// Reject unknown sessions before upgrading.
	if _, err := h.svc.Session(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(h.maxBody)

	ctx := r.Context()
	logger := observe.Logger(ctx).With("session_id", id)
	logger.Debug("chat socket opened")

	for {
		var in wsTurn
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				logger.Debug("chat socket read ended", "error", err)
			}
			return
		}

		res, err := h.svc.Chat(ctx, message.ChatRequest{SessionID: id, Text: in.Text})
		out := wsTurn{}
		if err != nil {
			out.Error = err.Error()
			if statusFor(err) == http.StatusNotFound {
				_ = wsjson.Write(ctx, conn, out)
				conn.Close(websocket.StatusPolicyViolation, "session ended")
				return
			}
		} else {
			out.Notices = res.Notices
			if res.Reply != "" {
				out.Role, out.Text = session.RoleAssistant, res.Reply
			}
		}
		if err := wsjson.Write(ctx, conn, out); err != nil {
			logger.Debug("chat socket write failed", "error", err)
			return
		}
	}
}
