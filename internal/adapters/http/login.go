package http

import (
	"net/http"
	"strings"

	"github.com/dkeye/roomchat/internal/adapters/signal"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// LoginForm is the handshake payload, accepted as a form or JSON.
type LoginForm struct {
	Name string `form:"name" json:"name" validate:"required,min=2,max=50"`
	Room string `form:"room" json:"room" validate:"required,min=2,max=50"`
}

func (f *LoginForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Room = strings.TrimSpace(f.Room)
}

func handleLogin(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login payload"})
		return
	}
	form.normalize()
	if err := validate.Struct(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := sessions.Default(c)
	s.Set(signal.SessionKeyName, form.Name)
	s.Set(signal.SessionKeyRoom, form.Room)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).
		Str("name", form.Name).Str("room", form.Room).Msg("login")
	c.JSON(http.StatusOK, form)
}

func handleWhoAmI(c *gin.Context) {
	s := sessions.Default(c)
	name, _ := s.Get(signal.SessionKeyName).(string)
	room, _ := s.Get(signal.SessionKeyRoom).(string)
	c.JSON(http.StatusOK, LoginForm{Name: name, Room: room})
}

func handleLogout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session clear")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}
