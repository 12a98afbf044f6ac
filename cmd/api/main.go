package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sudo-init-do/freelancehub/internal/auth"
	"github.com/sudo-init-do/freelancehub/internal/bid"
	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/message"
	mware "github.com/sudo-init-do/freelancehub/internal/middleware"
	"github.com/sudo-init-do/freelancehub/internal/project"
	"github.com/sudo-init-do/freelancehub/internal/user"
	"github.com/sudo-init-do/freelancehub/internal/validate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// The database must be up before any request is accepted.
	db.Init()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{frontendURL()},
		AllowCredentials: true,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	api := e.Group("/api")

	// Auth routes with per-IP rate limiting to protect signup/login from abuse
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	api.GET("/auth/me", auth.Me, mware.JWTMiddleware)

	// Users
	api.GET("/users/search/freelancers", user.SearchFreelancers)
	api.GET("/users/:id", user.GetPublicProfile)
	api.PUT("/users/profile", user.UpdateProfile, mware.JWTMiddleware)
	api.PUT("/users/avatar", user.UpdateAvatar, mware.JWTMiddleware)
	api.DELETE("/users/profile", user.DeactivateAccount, mware.JWTMiddleware)

	// Projects
	api.GET("/projects", project.List, mware.OptionalJWT)
	api.GET("/projects/:id", project.Get, mware.OptionalJWT)
	api.POST("/projects", project.Create, mware.JWTMiddleware, mware.RequireRoles(auth.RoleClient))
	api.PUT("/projects/:id", project.Update, mware.JWTMiddleware)
	api.DELETE("/projects/:id", project.SoftDelete, mware.JWTMiddleware)
	api.GET("/projects/user/my-projects", project.MyProjects, mware.JWTMiddleware, mware.RequireRoles(auth.RoleClient))

	// Bids
	api.POST("/bids", bid.Submit, mware.JWTMiddleware, mware.RequireRoles(auth.RoleFreelancer))
	api.GET("/bids/project/:projectId", bid.ListForProject, mware.JWTMiddleware)
	api.GET("/bids/my-bids", bid.ListMine, mware.JWTMiddleware, mware.RequireRoles(auth.RoleFreelancer))
	api.PUT("/bids/:id/accept", bid.Accept, mware.JWTMiddleware)
	api.PUT("/bids/:id/reject", bid.Reject, mware.JWTMiddleware)
	api.POST("/bids/:id/feedback", bid.LeaveFeedback, mware.JWTMiddleware)
	api.DELETE("/bids/:id", bid.Withdraw, mware.JWTMiddleware)

	// Messages
	msgs := api.Group("/messages", mware.JWTMiddleware)
	msgs.POST("", message.Send)
	msgs.GET("/conversations", message.ListConversations)
	msgs.GET("/conversation/:userId", message.ListConversation)
	msgs.GET("/unread-count", message.UnreadCount)
	msgs.PUT("/:id/read", message.MarkRead)
	msgs.DELETE("/:id", message.Delete)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Printf("API server listening on :%s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func frontendURL() string {
	if u := os.Getenv("FRONTEND_URL"); u != "" {
		return u
	}
	return "http://localhost:5173"
}
