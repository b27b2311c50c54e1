package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/alcaldiayopal/chatbot-backend/app"
	"github.com/alcaldiayopal/chatbot-backend/utils"
)

// StatsHandler handles GET /estadisticas. The stats document is served
// as-is; its Spanish field names are the public contract.
func StatsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Stats.Load()
		if err != nil {
			deps.Logger.Error("failed to load statistics", zap.Error(err))
			_ = utils.WriteInternalServerError(w, "Error interno al obtener estadísticas")
			return
		}
		_ = utils.WriteJSON(w, http.StatusOK, stats)
	}
}
