package httpapi

import (
	"github.com/gin-gonic/gin"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
)

// snapshotEvent is the server-sent event name carrying a store snapshot.
const snapshotEvent = "snapshot"

// stream pushes the current snapshot and every later one as server-sent
// events until the client goes away.
func (s *Server) stream(c *gin.Context) {
	snaps, unsubscribe := s.store.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	logger.Log.Debug().Int("subscribers", s.store.Subscribers()).Msg("Snapshot stream opened")

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug().Msg("Snapshot stream closed")
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			c.SSEvent(snapshotEvent, snap)
			c.Writer.Flush()
		}
	}
}
