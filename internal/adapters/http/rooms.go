package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mockorbit/interviewd/internal/app/orch"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/rs/zerolog/log"
)

type roomsHandler struct {
	orch *orch.Orchestrator
}

// GET /api/v1/rooms
func (h *roomsHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

// GET /api/v1/rooms/:id
func (h *roomsHandler) get(c *gin.Context) {
	info, ok := h.orch.Rooms.Info(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// DELETE /api/v1/rooms/:id ends the interview for everyone in it.
func (h *roomsHandler) end(c *gin.Context) {
	id := domain.RoomID(c.Param("id"))
	if !h.orch.Rooms.RoomExists(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	n := h.orch.EvictRoom(id)
	log.Info().Str("module", "adapters.http").Str("room", string(id)).Int("closed", n).Msg("room ended by admin")
	c.Status(http.StatusNoContent)
}

// DELETE /api/v1/rooms/:id/members/:uid
func (h *roomsHandler) kick(c *gin.Context) {
	id := domain.RoomID(c.Param("id"))
	uid := domain.UserID(c.Param("uid"))
	if !h.orch.KickUser(id, uid, "removed by admin") {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(id)).Str("user", string(uid)).Msg("member kicked by admin")
	c.Status(http.StatusNoContent)
}
