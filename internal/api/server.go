package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"healthease/internal/api/middleware"
)

// NewEngine returns a gin engine with recovery, request logging and CORS
// installed. Routes are added by Router.Setup.
func NewEngine(logger zerolog.Logger, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(corsOrigins),
	)
	return engine
}
