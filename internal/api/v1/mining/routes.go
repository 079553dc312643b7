package mining

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	mining := router.Group("/mining")
	mining.GET("/coins", ListCoins)
	mining.GET("/packages", ListPackages)
	mining.GET("/sessions", ActiveSessions)
	mining.GET("/sessions/history", SessionHistory)
	mining.POST("/start", StartMining)
	mining.POST("/stop", StopMining)
}
