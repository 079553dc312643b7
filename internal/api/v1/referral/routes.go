package referral

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	referrals := router.Group("/referrals")
	referrals.GET("", Summary)
}
