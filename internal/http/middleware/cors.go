package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vintry/contentops-backend/internal/platform/envutil"
)

// CORS allows the local dev frontends by default; production sets
// CORS_ALLOWED_ORIGINS to a comma-separated origin list.
func CORS() gin.HandlerFunc {
	origins := envutil.Strings("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:80",
		"http://localhost:3000",
		"http://localhost:5173",
		"http://localhost:5174",
		"http://127.0.0.1:80",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
		"http://127.0.0.1:5174",
	})
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Trace-Id", "X-Request-Id"},
		AllowCredentials: true,
	})
}
