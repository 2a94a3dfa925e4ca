package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/latroca/latroca-api/internal/auth"
	"github.com/latroca/latroca-api/internal/metrics"
	"github.com/latroca/latroca-api/internal/ratelimit"
	"github.com/latroca/latroca-api/internal/user"
)

// Router builds the gin engine with all routes mounted under /api/v1.
// limiter and denylist may be nil, which disables rate limiting and token
// revocation checks respectively.
func Router(api *API, tokens *auth.TokenIssuer, denylist *auth.Denylist, limiter *ratelimit.Limiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	var revoker TokenRevoker
	if denylist != nil {
		revoker = denylistAdapter{d: denylist}
	}
	authed := authMiddleware(tokens, revoker)

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", api.handleRegister)
		authGroup.POST("/login", rateLimitByIP(limiter, ratelimit.RuleLogin), api.handleLogin)
		authGroup.POST("/login-google", rateLimitByIP(limiter, ratelimit.RuleLogin), api.handleLoginGoogle)
		authGroup.POST("/logout", authed, api.handleLogout)
		authGroup.POST("/deactivate", authed, api.handleDeactivate)
		authGroup.GET("/profile", authed, api.handleOwnProfile)
	}

	users := v1.Group("/users", authed)
	{
		users.GET("/profile/:id", api.handleProfileByID)
		users.GET("/me", api.handleOwnProfile)
		users.PUT("/me", api.handleUpdateProfile)
		users.PUT("/me/password", api.handleChangePassword)
	}

	posts := v1.Group("/posts", authed)
	{
		posts.POST("", api.handleCreatePost)
		posts.GET("", api.handleListPosts)
		posts.GET("/mine", api.handleMyPosts)
		posts.GET("/:id", api.handlePostByID)
		posts.PUT("/:id", api.handleUpdatePost)
		posts.DELETE("/:id", api.handleDeletePost)
	}

	mod := v1.Group("/moderation", authed, rateLimitByUser(limiter, ratelimit.RuleModeration))
	{
		mod.POST("/text", api.handleModerateText)
		mod.POST("/image", api.handleModerateImage)
	}

	chat := v1.Group("/chat", authed)
	{
		chat.POST("/send-notification", api.handleSendChatNotification)
		chat.POST("/fcm-token", api.handleSetFCMToken)
		chat.DELETE("/fcm-token", api.handleClearFCMToken)
	}

	admin := v1.Group("/admin", authed, requireRole(user.RoleAdmin))
	{
		admin.GET("/users", api.handleAdminListUsers)
		admin.GET("/users/:id", api.handleAdminGetUser)
		admin.PUT("/users/:id", api.handleAdminUpdateUser)
		admin.GET("/flags", api.handleAdminListFlags)
	}

	return r
}
