package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Tandem/internal/adapters/signal"
	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/config"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/repository"
)

const clientKey = "client"

// ClientTokenMiddleware keeps a stable per-browser id in the session cookie.
// It is only used to correlate logs, never for authorization.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Str("module", "adapters.http").Err(err).Msg("save session")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, store repository.MessageStore) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookies := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("TandemSessions", cookies))
	r.Use(ClientTokenMiddleware())

	ctrl := signal.NewSignalWSController(
		o,
		signal.NewRateLimiter(cfg.RateLimit.Events, cfg.RateLimit.Interval),
		signal.Settings{
			ReadLimit:    cfg.ReadLimit,
			PingPeriod:   cfg.PingPeriod,
			WriteTimeout: cfg.WriteTimeout,
			SendBuffer:   cfg.SendBuffer,
		},
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/online", func(c *gin.Context) {
		users := o.OnlineUsers()
		c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": o.RoomsInfo()})
	})

	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": o.Options.ICEServers})
	})

	api.PUT("/users/:id/notification-token", func(c *gin.Context) {
		uid, err := domain.ParseUserID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var body tokenRequest
		if err := c.ShouldBindJSON(&body); err != nil || len(body.Token) > domain.MaxTokenLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrMalformedPayload.Error()})
			return
		}
		if err := store.SetNotificationToken(c.Request.Context(), uid, domain.NotificationToken(body.Token)); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, context.Canceled) {
				status = http.StatusRequestTimeout
			}
			log.Error().Str("module", "adapters.http").Str("user", string(uid)).Err(err).Msg("store notification token")
			c.JSON(status, gin.H{"error": "store failure"})
			return
		}
		c.Status(http.StatusNoContent)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
