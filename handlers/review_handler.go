package handlers

import (
	"net/http"

	"github.com/alcaldiayopal/chatbot-backend/app"
	"github.com/alcaldiayopal/chatbot-backend/utils"
)

// ListUnansweredHandler handles GET /admin/unanswered. Protected by the
// admin JWT middleware; returns every deferred question grouped by session.
func ListUnansweredHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, deps.Review.All())
	}
}
