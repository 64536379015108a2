package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskloop/api/store"
)

type StatsHandlers struct {
	ActivityStore *store.ActivityStore
}

func NewStatsHandlers(s *store.ActivityStore) *StatsHandlers {
	return &StatsHandlers{
		ActivityStore: s,
	}
}

// parseTimeRange reads optional RFC3339 'start' and 'end' query parameters,
// defaulting to the last 7 days. Returns false after writing an error
// response when either timestamp is malformed.
func parseTimeRange(c *gin.Context) (start, end time.Time, ok bool) {
	var err error

	startParam := c.Query("start")
	if startParam != "" {
		start, err = time.Parse(time.RFC3339, startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
	} else {
		start = time.Now().UTC().Add(-7 * 24 * time.Hour)
	}

	endParam := c.Query("end")
	if endParam != "" {
		end, err = time.Parse(time.RFC3339, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
	} else {
		end = time.Now().UTC()
	}

	return start, end, true
}

func (h *StatsHandlers) available(c *gin.Context) bool {
	if h.ActivityStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Activity tracking is not enabled"})
		return false
	}
	return true
}

func (h *StatsHandlers) GetActionCountsOverTime(c *gin.Context) {
	if !h.available(c) {
		return
	}

	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}

	actionFilter := c.Query("action")

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.ActivityStore.GetActionCountsOverTime(ctx, interval, start, end, actionFilter)
	if err != nil {
		log.Printf("Error getting action counts over time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activity statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *StatsHandlers) GetUniqueUsersOverTime(c *gin.Context) {
	if !h.available(c) {
		return
	}

	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.ActivityStore.GetUniqueUsersOverTime(ctx, interval, start, end)
	if err != nil {
		log.Printf("Error getting unique users over time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve unique user statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *StatsHandlers) GetTopActions(c *gin.Context) {
	if !h.available(c) {
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	var limit uint64 = 10
	limitParam := c.Query("limit")
	if limitParam != "" {
		parsedLimit, err := strconv.ParseUint(limitParam, 10, 64)
		if err != nil || parsedLimit == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsedLimit
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.ActivityStore.GetTopActions(ctx, start, end, limit)
	if err != nil {
		log.Printf("Error getting top actions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top action statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}
