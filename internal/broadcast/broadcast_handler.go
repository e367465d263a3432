package broadcast

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const heartbeatInterval = 15 * time.Second

type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub, logger: zap.L().Named("broadcast.handler")}
}

// Stream serves the status feed over SSE. Each connection gets its own
// subscriber; disconnecting drops it and whatever it had not consumed.
func (h *Handler) Stream(c *gin.Context) {
	observerID := c.GetString("user_id")
	subscriberID := observerID + ":" + uuid.New().String()

	sub := h.hub.Subscribe(subscriberID)
	defer h.hub.Unsubscribe(subscriberID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case evt, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent("employee_status_changed", evt)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
