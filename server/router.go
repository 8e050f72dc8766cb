// Package server wires the REST routes onto a gin engine.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plaza-social/plaza/server/handlers"
	"github.com/plaza-social/plaza/server/middlewares"
)

// RegisterRoutes mounts the whole API surface. Signup and login are
// the only routes outside the session wall.
func RegisterRoutes(router *gin.Engine, h *handlers.Handler) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.POST("/auth/signup", h.Signup)
	router.POST("/auth/login", h.Login)

	api := router.Group("/", middlewares.Session())

	api.POST("/auth/logout", h.Logout)

	api.GET("/users/:id", h.GetUser)
	api.PATCH("/users/me", h.UpdateProfile)
	api.POST("/users/:id/follow", h.Follow)
	api.DELETE("/users/:id/follow", h.Unfollow)
	api.GET("/users/:id/followers", h.ListFollowers)
	api.GET("/users/:id/following", h.ListFollowing)

	api.POST("/posts", h.CreatePost)
	api.GET("/posts/:id", h.GetPost)
	api.DELETE("/posts/:id", h.DeletePost)
	api.POST("/posts/:id/like", h.LikePost)
	api.POST("/posts/:id/dislike", h.DislikePost)
	api.POST("/posts/:id/save", h.SavePost)
	api.POST("/posts/:id/repost", h.RepostPost)
	api.POST("/posts/:id/comments", h.CreateComment)
	api.GET("/posts/:id/comments", h.ListComments)

	api.DELETE("/comments/:id", h.DeleteComment)
	api.POST("/comments/:id/like", h.LikeComment)

	api.GET("/feed/home", h.GetHomeFeed)
	api.GET("/feed/trending", h.GetTrendingFeed)
	api.POST("/feed/read", h.MarkPostsRead)

	api.POST("/conversations", h.CreateConversation)
	api.GET("/conversations", h.ListConversations)
	api.GET("/conversations/:id", h.GetConversation)
	api.POST("/conversations/:id/members", h.AddMember)
	api.POST("/conversations/:id/messages", h.SendMessage)
	api.GET("/conversations/:id/messages", h.ListMessages)
	api.POST("/conversations/:id/read", h.MarkConversationRead)
	api.DELETE("/messages/:messageId", h.DeleteMessage)

	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/unread_count", h.GetUnreadNotificationCount)
	api.POST("/notifications/read", h.MarkNotificationsRead)

	api.POST("/stories", h.CreateStory)
	api.GET("/stories", h.ListStoryReels)
	api.POST("/stories/:id/view", h.ViewStory)
	api.GET("/stories/:id/viewers", h.ListStoryViewers)
	api.DELETE("/stories/:id", h.DeleteStory)

	api.POST("/streams", h.CreateStream)
	api.GET("/streams", h.ListLiveStreams)
	api.GET("/streams/:id", h.GetStream)
	api.GET("/streams/:id/key", h.GetStreamKey)
	api.POST("/streams/:id/start", h.StartStream)
	api.POST("/streams/:id/end", h.EndStream)
	api.POST("/streams/:id/join", h.JoinStream)
	api.POST("/streams/:id/leave", h.LeaveStream)

	api.POST("/products", h.CreateProduct)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.PATCH("/products/:id", h.UpdateProduct)
	api.DELETE("/products/:id", h.DeleteProduct)

	api.POST("/orders", h.PlaceOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/:id", h.GetOrder)
	api.POST("/orders/:id/ship", h.ShipOrder)
	api.POST("/orders/:id/complete", h.CompleteOrder)
	api.POST("/orders/:id/cancel", h.CancelOrder)

	api.POST("/payments/:orderId/capture", h.CapturePayment)
	api.POST("/payments/:orderId/refund", h.RefundPayment)
	api.GET("/payments/:orderId", h.ListOrderPayments)

	api.POST("/reports", h.CreateReport)
	api.GET("/reports", h.ListMyReports)

	api.GET("/ws", h.WebSocket)
}
