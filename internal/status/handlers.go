package status

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/handiism/spotify-dl/internal/progress"
)

// TrackStatus is the JSON view of one track.
type TrackStatus struct {
	progress.Update
	Percentage float64 `json:"percentage"`
}

func newTrackStatus(u progress.Update) TrackStatus {
	ts := TrackStatus{Update: u}
	switch {
	case u.Kind == progress.Finished:
		ts.Percentage = 100
	case u.Total > 0:
		ts.Percentage = min(float64(u.Position)/float64(u.Total)*100, 100)
	}
	return ts
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "spotify-dl",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleTracks(c *gin.Context) {
	snapshot := s.hub.Snapshot()
	tracks := make([]TrackStatus, len(snapshot))
	for i, u := range snapshot {
		tracks[i] = newTrackStatus(u)
	}

	var summary progress.Summary
	for _, u := range snapshot {
		summary.Add(u)
	}
	completed, failed, skipped := summary.Counts()

	c.JSON(http.StatusOK, gin.H{
		"tracks":    tracks,
		"completed": completed,
		"failed":    failed,
		"skipped":   skipped,
	})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	// Subscribe before taking the snapshot so no lifecycle update falls
	// between the two.
	updates, unsubscribe := s.hub.Subscribe(clientBuffer)
	client := newClient(conn, updates, unsubscribe, s.logger)
	client.start(s.hub.Snapshot())
}
