// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mercadofacil/backend-go/internal/api/handlers"
	"github.com/mercadofacil/backend-go/internal/api/middleware"
	"github.com/mercadofacil/backend-go/internal/service"
)

func NewRouter(svc *service.PantryService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pantryHandler := handlers.NewPantryHandler(svc)
	apiGroup := router.Group("/api/v1")
	{
		apiGroup.GET("/products", pantryHandler.ListProducts)
		apiGroup.POST("/products", pantryHandler.RegisterProduct)
		apiGroup.DELETE("/products/:id", pantryHandler.DeleteProduct)
		apiGroup.GET("/products/:id/history", pantryHandler.ProductHistory)

		apiGroup.GET("/suggestions", pantryHandler.GetShoppingList)

		cartGroup := apiGroup.Group("/cart")
		{
			cartGroup.GET("", pantryHandler.GetCart)
			cartGroup.PUT("/items", pantryHandler.PutCartEntry)
			cartGroup.DELETE("/items/:id", pantryHandler.RemoveCartEntry)
			cartGroup.DELETE("", pantryHandler.ClearCart)
			cartGroup.POST("/checkout", pantryHandler.Checkout)
		}

		apiGroup.POST("/audit", pantryHandler.ApplyAudit)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
