package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskloop/api/models"
	"taskloop/api/store"
)

// recordActivity writes a single activity event. Recording is best-effort:
// a nil store (activity tracking disabled) or an insert failure never fails
// the user's request.
func recordActivity(c *gin.Context, activity *store.ActivityStore, action string, userID, todoID int) {
	if activity == nil {
		return
	}

	event := models.ActivityEvent{
		EventID:   uuid.New().String(),
		Action:    action,
		UserID:    int64(userID),
		TodoID:    int64(todoID),
		IPAddress: c.ClientIP(),
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := activity.InsertActivityEvents(ctx, []models.ActivityEvent{event}); err != nil {
		log.Printf("Error recording %s activity for user %d: %v", action, userID, err)
	}
}
