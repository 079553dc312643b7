package withdrawal

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	withdrawals := router.Group("/withdrawals")
	withdrawals.GET("", ListWithdrawals)
	withdrawals.POST("/:id/approve", ApproveWithdrawal)
	withdrawals.POST("/:id/reject", RejectWithdrawal)
}
