package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/app"
	"github.com/alcaldiayopal/chatbot-backend/utils"
)

// ChatRequest is one conversation turn from the web widget.
type ChatRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ChatResponse is the assistant's reply for one turn.
type ChatResponse struct {
	Response     string `json:"response"`
	ContextFound bool   `json:"contextFound"`
}

// ChatHandler handles POST /chat
func ChatHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			deps.Logger.Warn("failed to parse chat request", zap.Error(err))
			_ = utils.WriteBadRequest(w, "Falta sessionId o mensaje", nil)
			return
		}

		if err := utils.ValidateStruct(&req); err != nil {
			deps.Logger.Warn("chat request validation failed", zap.Error(err))
			details := make(map[string]interface{})
			for k, v := range utils.GetValidationFields(err) {
				details[k] = v
			}
			_ = utils.WriteBadRequest(w, "Falta sessionId o mensaje", details)
			return
		}

		reply, err := deps.Chat.Respond(r.Context(), req.SessionID, req.Message)
		if err != nil {
			deps.Logger.Error("conversation turn failed",
				zap.String("session_id", req.SessionID),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "Error interno del servidor")
			return
		}

		_ = utils.WriteJSON(w, http.StatusOK, ChatResponse{
			Response:     reply.Response,
			ContextFound: reply.ContextFound,
		})
	}
}
