package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpHandler "agent-hub/interfaces/http"
	"agent-hub/interfaces/middleware"
)

func InitiateRouter(
	whatsAppHandler httpHandler.IWhatsAppHandler,
	instagramHandler httpHandler.IInstagramHandler,
	emailHandler httpHandler.IEmailHandler,
	agentHandler httpHandler.IAgentHandler,
	leadHandler httpHandler.ILeadHandler,
	videoHandler httpHandler.IVideoHandler,
	provisioningHandler httpHandler.IProvisioningHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://devaito.com", "http://localhost:4200", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			// Every tenant dashboard lives on its own devaito subdomain.
			return strings.HasSuffix(origin, ".devaito.com") ||
				origin == "https://devaito.com" ||
				strings.HasPrefix(origin, "http://localhost:")
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("api")

	// Provider webhooks authenticate by obscurity of the URL plus
	// provider-side signatures; both must always be reachable.
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/whatsapp", whatsAppHandler.Inbound)
		webhooks.POST("/unipile", instagramHandler.Webhook)
	}

	// Engine-facing callbacks share a header secret with the workflows.
	engine := api.Group("")
	engine.Use(middleware.WebhookSecret())
	{
		engine.POST("/agent/log", whatsAppHandler.LogTurn)
		engine.POST("/agent/context", whatsAppHandler.Context)
		engine.POST("/agents/complete", agentHandler.Complete)
		engine.GET("/agents/active", leadHandler.ActiveConfigs)
		engine.POST("/leads/ingest", leadHandler.Ingest)
		engine.POST("/leads/ingest-batch", leadHandler.IngestBatch)
		engine.POST("/videos/callback", videoHandler.Callback)
	}

	// Scheduler-triggered sweeps.
	cron := api.Group("/cron")
	cron.Use(middleware.CronSecret())
	{
		cron.POST("/poll-email", emailHandler.Poll)
		cron.POST("/process-forwards", instagramHandler.ProcessQueue)
	}

	// The dashboard's video player cannot attach headers to a <video>
	// src, so the proxy stays outside the auth group.
	api.GET("/videos/:jobId/file", videoHandler.Proxy)

	dashboard := api.Group("")
	dashboard.Use(middleware.Auth())
	{
		whatsapp := dashboard.Group("/whatsapp")
		{
			whatsapp.GET("/stats", whatsAppHandler.Stats)
			whatsapp.GET("/conversations/:conversationId", whatsAppHandler.Conversation)
			whatsapp.POST("/test", whatsAppHandler.Test)
		}

		instagram := dashboard.Group("/instagram")
		{
			instagram.POST("/connect", instagramHandler.Connect)
			instagram.GET("/status", instagramHandler.Status)
			instagram.POST("/config", instagramHandler.UpdateConfig)
			instagram.POST("/disconnect", instagramHandler.Disconnect)
			instagram.GET("/stats", instagramHandler.Stats)
		}

		email := dashboard.Group("/email")
		{
			email.POST("/connect", emailHandler.Connect)
			email.GET("/status", emailHandler.Status)
			email.POST("/config", emailHandler.UpdateConfig)
			email.POST("/disconnect", emailHandler.Disconnect)
			email.POST("/test", emailHandler.Test)
			email.GET("/conversations", emailHandler.Conversations)
			email.GET("/conversations/:conversationId", emailHandler.Thread)
			email.POST("/drafts/:id/approve", emailHandler.ApproveDraft)
			email.POST("/drafts/:id/reject", emailHandler.RejectDraft)
			email.GET("/stats", emailHandler.Stats)
		}

		agents := dashboard.Group("/agents")
		{
			agents.POST("", agentHandler.Create)
			agents.GET("", agentHandler.List)
			agents.GET("/:id", agentHandler.Get)
			agents.PUT("/:id", agentHandler.Update)
			agents.DELETE("/:id", agentHandler.Delete)
			agents.POST("/:id/toggle", agentHandler.ToggleActive)
			agents.POST("/:id/run", agentHandler.Run)
			agents.POST("/:id/stop", agentHandler.Stop)
		}

		leads := dashboard.Group("/leads")
		{
			leads.GET("/pending", leadHandler.Pending)
			leads.POST("/:id/sent", leadHandler.MarkSent)
			leads.POST("/:id/reject", leadHandler.Reject)
			leads.GET("/stats", leadHandler.Stats)
			leads.GET("/config", leadHandler.ConfigStatus)
			leads.POST("/config", leadHandler.SaveConfig)
		}

		videos := dashboard.Group("/videos")
		{
			videos.POST("/generate", videoHandler.Generate)
			videos.GET("/:jobId/status", videoHandler.Status)
			videos.GET("/history", videoHandler.History)
			videos.DELETE("/:jobId", videoHandler.Delete)
		}

		provisioning := dashboard.Group("/provisioning")
		{
			provisioning.GET("/countries", provisioningHandler.Countries)
			provisioning.GET("/search", provisioningHandler.Search)
			provisioning.POST("/buy", provisioningHandler.Buy)
			provisioning.POST("/configure", provisioningHandler.Configure)
			provisioning.GET("/status", provisioningHandler.Status)
			provisioning.POST("/deactivate", provisioningHandler.Deactivate)
		}
	}

	return router
}
