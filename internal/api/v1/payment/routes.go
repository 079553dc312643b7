package payment

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/payments")
	payments.POST("", SubmitPayment)
	payments.GET("", ListPayments)
}
