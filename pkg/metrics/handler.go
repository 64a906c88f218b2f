package metrics

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"requests_total":        GetRequests(),
		"loan_creates_total":    GetLoanCreates(),
		"loan_returns_total":    GetLoanReturns(),
		"feed_broadcasts_total": GetFeedBroadcasts(),
		"feed_broadcast_fails":  GetFeedBroadcastFails(),
		"active_feed_clients":   GetActiveFeedClients(),
	})
}

// CountRequests is gin middleware tracking total handled requests.
func CountRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		IncrementRequests()
		c.Next()
	}
}
