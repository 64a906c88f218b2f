package feed

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	service *Service
	hub     *Hub
	log     *logger.Logger
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		log:     logger.WithContext("component", "feed_handler"),
	}
}

// Recent serves the activity feed page data.
func (h *Handler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	activities, err := h.service.Recent(limit)
	if err != nil {
		h.log.Error("feed_query_failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"count":      len(activities),
	})
}

// Subscribe upgrades the connection and streams activity events until the
// client disconnects.
func (h *Handler) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("feed_upgrade_failed", "error", err.Error())
		return
	}

	id, _ := utils.GenerateID(8)
	client := &Client{
		ID:          id,
		Conn:        conn,
		Send:        make(chan []byte, 64),
		ConnectedAt: time.Now(),
	}

	h.hub.register <- client
	go client.writePump()
	go client.readPump(h.hub)
}
