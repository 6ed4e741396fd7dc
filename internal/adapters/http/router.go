// Package http exposes the directory and room pages plus the websocket
// endpoint. It is a thin collaborator: all room state lives behind the
// coordinator, and the only thing this layer owns is the cookie-backed
// durable identity.
package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/adapters/signal"
	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/config"
	"github.com/DrJasper1/emerson-colab/internal/domain"
)

// IdentityMiddleware mints a durable per-browser user id on first
// contact and keeps it in the cookie session across reconnects. The
// display name rides along in the same session.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		uid, _ := sess.Get("uid").(string)
		if uid == "" {
			uid = uuid.NewString()
			sess.Set("uid", uid)
			if err := sess.Save(); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set("uid", uid)
		if name, _ := sess.Get("display_name").(string); name != "" {
			c.Set("display_name", name)
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ColabSessions", store))
	r.Use(IdentityMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.Static("/room_pictures", cfg.UploadPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	r.GET("/api/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.ListRooms())
	})

	r.POST("/create-room", func(c *gin.Context) {
		handleCreateRoom(c, cfg, coord)
	})

	r.GET("/room/:roomId", func(c *gin.Context) {
		roomID := domain.RoomID(c.Param("roomId"))
		if _, ok := coord.RoomSummary(roomID); !ok {
			c.Redirect(http.StatusFound, "/")
			return
		}
		if name := c.Query("displayName"); name != "" {
			saveDisplayName(c, name)
		}
		c.File(cfg.StaticPath + "/room.html")
	})

	r.POST("/logout", func(c *gin.Context) {
		sess := sessions.Default(c)
		sess.Clear()
		if err := sess.Save(); err != nil {
			c.String(http.StatusInternalServerError, "Could not log out.")
			return
		}
		c.Redirect(http.StatusFound, "/")
	})

	r.GET("/api/ws/signal", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	return r
}

func saveDisplayName(c *gin.Context, name string) {
	sess := sessions.Default(c)
	sess.Set("display_name", name)
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save display name")
	}
	c.Set("display_name", name)
}
