package routes

import (
	"net/http"

	"github.com/aspet/simple-bank/internal/handlers"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SetupRouter builds the public account API.
func SetupRouter(h *handlers.AccountHandler, logger *zap.Logger, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handlers.RequestID(), handlers.AccessLog(logger), handlers.CORSMiddleware(corsOrigins))

	api := r.Group("/api")
	api.GET("/accounts", h.GetAccounts)
	api.POST("/create", h.CreateAccount)
	api.PATCH("/makeDeposit", h.MakeDeposit)
	api.PATCH("/withdrawDeposit", h.WithdrawDeposit)
	api.PATCH("/transfer", h.Transfer)

	return r
}

// SetupOpsRouter builds the health and stats endpoints served on the ops
// listener.
func SetupOpsRouter(h *handlers.OpsHandler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Ready).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)

	return r
}
