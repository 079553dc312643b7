package api

import (
	"cloudmine-backend/config"
	adminPayment "cloudmine-backend/internal/api/v1/admin/payment"
	adminTransaction "cloudmine-backend/internal/api/v1/admin/transaction"
	adminUser "cloudmine-backend/internal/api/v1/admin/user"
	adminWithdrawal "cloudmine-backend/internal/api/v1/admin/withdrawal"
	"cloudmine-backend/internal/api/v1/auth"
	"cloudmine-backend/internal/api/v1/mining"
	"cloudmine-backend/internal/api/v1/payment"
	"cloudmine-backend/internal/api/v1/referral"
	userRoutes "cloudmine-backend/internal/api/v1/user"
	"cloudmine-backend/internal/api/v1/withdrawal"
	"cloudmine-backend/internal/database"
	"cloudmine-backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Use(middleware.Logger())

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			userRoutes.RegisterRoutes(authorized)
			mining.RegisterRoutes(authorized)
			payment.RegisterRoutes(authorized)
			withdrawal.RegisterRoutes(authorized)
			referral.RegisterRoutes(authorized)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminUser.RegisterRoutes(admin)
			adminPayment.RegisterRoutes(admin)
			adminWithdrawal.RegisterRoutes(admin)
			adminTransaction.RegisterRoutes(admin)
		}
	}

	return router, nil
}
