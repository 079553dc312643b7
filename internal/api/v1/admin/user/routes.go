package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.GET("", ListUsers)
	users.POST("/:id/ban", BanUser)
	users.POST("/:id/unban", UnbanUser)
}
