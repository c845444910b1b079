package http

import (
	"net/http"

	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/gin-gonic/gin"
)

type roomsHandler struct {
	rooms core.RoomRegistry
}

func (h *roomsHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.rooms.List()})
}

func (h *roomsHandler) members(c *gin.Context) {
	room := domain.RoomName(c.Param("name"))
	c.JSON(http.StatusOK, core.Snapshot(h.rooms.MembersOf(room)))
}
