package withdrawal

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	withdrawals := router.Group("/withdrawals")
	withdrawals.POST("", RequestWithdrawal)
	withdrawals.GET("", ListWithdrawals)
}
