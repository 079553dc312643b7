package payment

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/payments")
	payments.GET("", ListPayments)
	payments.POST("/:id/approve", ApprovePayment)
	payments.POST("/:id/reject", RejectPayment)
}
