// Package routing wires the HTTP routes to the handlers and middleware.
package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hoax-server/internal/managers"
	"hoax-server/internal/middleware"
	"hoax-server/internal/routing/handlers"
	"hoax-server/internal/schemas"
	"hoax-server/internal/utils"
)

func InitRouter(databaseMgr managers.DatabaseMgr, tokenMgr managers.TokenMgr, mailMgr managers.MailMgr, imageMgr managers.ImageMgr) *gin.Engine {
	router := gin.New()
	setupCommonMiddleware(router)
	setupRoutes(router, databaseMgr, tokenMgr, mailMgr, imageMgr)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:19000"},
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, tokenMgr managers.TokenMgr, mailMgr managers.MailMgr, imageMgr managers.ImageMgr) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("API_VERSION")
		if apiVersion == "" {
			apiVersion = "main:latest"
		}
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    "Hoax Server",
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.GetPool().Ping(c); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	// Set up API routes. The auth middleware covers the whole group so a
	// presented live token is refreshed on every request, also on routes
	// that proceed without authentication.
	apiRouter := router.Group("/api")
	apiRouter.Use(middleware.Authenticate(tokenMgr))
	{
		userRouter := apiRouter.Group("/users")
		userHdl := handlers.NewUserHandler(databaseMgr, tokenMgr, mailMgr, imageMgr)
		userRoutes(userRouter, userHdl)

		hoaxRouter := apiRouter.Group("/hoaxes")
		hoaxHdl := handlers.NewHoaxHandler(databaseMgr)
		hoaxRoutes(hoaxRouter, hoaxHdl)
		userRouter.GET("/:userId/hoaxes", hoaxHdl.GetHoaxesForUser)
	}
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl) {
	userRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.RegistrationRequest{}), userHdl.RegisterUser)
	userRouter.POST("/token/:token", userHdl.ActivateUser)
	userRouter.POST("/login", middleware.ValidateAndSanitizeStruct(&schemas.LoginRequest{}), userHdl.LoginUser)
	userRouter.POST("/logout", userHdl.LogoutUser)
	userRouter.GET("", userHdl.ListUsers)
	userRouter.GET("/:userId", userHdl.GetUser)
	userRouter.PUT("/:userId", middleware.ValidateAndSanitizeStruct(&schemas.UserUpdateRequest{}), userHdl.UpdateUser)
	userRouter.DELETE("/:userId", userHdl.DeleteUser)
	userRouter.POST("/password-reset", middleware.ValidateAndSanitizeStruct(&schemas.PasswordResetRequest{}), userHdl.RequestPasswordReset)
	userRouter.POST("/password-reset/confirm", middleware.ValidateAndSanitizeStruct(&schemas.SetNewPasswordRequest{}), userHdl.SetNewPassword)
}

func hoaxRoutes(hoaxRouter *gin.RouterGroup, hoaxHdl handlers.HoaxHdl) {
	hoaxRouter.POST("", middleware.ValidateAndSanitizeStruct(&schemas.CreateHoaxRequest{}), hoaxHdl.CreateHoax)
	hoaxRouter.GET("", hoaxHdl.GetHoaxes)
	hoaxRouter.DELETE("/:hoaxId", hoaxHdl.DeleteHoax)
}
