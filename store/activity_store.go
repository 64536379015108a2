package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskloop/api/database"
	"taskloop/api/models"
	"taskloop/api/utils"
)

type ActivityStore struct {
	DB *database.ClickHouseClient
}

type ActionCountByTime struct {
	Time   time.Time `json:"time"`
	Action *string   `json:"action,omitempty"`
	Count  uint64    `json:"count"`
}

func NewActivityStore(chClient *database.ClickHouseClient) *ActivityStore {
	return &ActivityStore{
		DB: chClient,
	}
}

func (s *ActivityStore) InsertActivityEvents(ctx context.Context, events []models.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Column names and order must exactly match the activity_events schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO activity_events (
			event_id, action, user_id, todo_id, ip_address, timestamp
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.Action,
			event.UserID,
			event.TodoID,
			event.IPAddress,
			event.Timestamp,
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

func (s *ActivityStore) GetActionCountsOverTime(ctx context.Context, interval string, start, end time.Time, actionFilter string) ([]ActionCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []interface{}{start, end}

	selectCols := fmt.Sprintf("toStartOf%s(timestamp) as time_bucket, count() as total_events", interval)
	groupByCols := "time_bucket"
	whereClause := "WHERE timestamp >= ? AND timestamp <= ?"
	orderByCols := "time_bucket ASC"
	isFilteringByAction := actionFilter != ""

	if isFilteringByAction {
		selectCols += ", action"
		groupByCols += ", action"
		whereClause += " AND action = ?"
		args = append(args, actionFilter)
		orderByCols += ", action ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM activity_events
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, whereClause, groupByCols, orderByCols)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query action counts over time: %w", err)
	}
	defer rows.Close()

	var results []ActionCountByTime
	for rows.Next() {
		var (
			timeBucket    time.Time
			count         uint64
			actionDB      string
			currentResult ActionCountByTime
		)

		if isFilteringByAction {
			if err := rows.Scan(&timeBucket, &count, &actionDB); err != nil {
				log.Printf("Error scanning row for action counts over time (with action filter): %v", err)
				continue
			}
			currentResult.Action = &actionDB
		} else {
			if err := rows.Scan(&timeBucket, &count); err != nil {
				log.Printf("Error scanning row for action counts over time (no action filter): %v", err)
				continue
			}
			currentResult.Action = nil
		}

		currentResult.Time = timeBucket
		currentResult.Count = count
		results = append(results, currentResult)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during action counts over time query: %w", err)
	}

	return results, nil
}

func (s *ActivityStore) GetUniqueUsersOverTime(ctx context.Context, interval string, start, end time.Time) ([]ActionCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(timestamp) AS time_bucket, uniq(user_id) AS unique_users
		FROM activity_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query unique users over time: %w", err)
	}
	defer rows.Close()

	var results []ActionCountByTime
	for rows.Next() {
		var timeBucket time.Time
		var uniqueUsers uint64
		if err := rows.Scan(&timeBucket, &uniqueUsers); err != nil {
			log.Printf("Error scanning row for unique users: %v", err)
			continue
		}
		results = append(results, ActionCountByTime{
			Time:  timeBucket,
			Count: uniqueUsers,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for unique users: %w", err)
	}

	return results, nil
}

func (s *ActivityStore) GetTopActions(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopActionResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT action, count() as action_count
		FROM activity_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY action
		ORDER BY action_count DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top actions: %w", err)
	}
	defer rows.Close()

	var results []models.TopActionResult
	for rows.Next() {
		var action string
		var count uint64
		if err := rows.Scan(&action, &count); err != nil {
			log.Printf("Error scanning row for top actions: %v", err)
			continue
		}
		results = append(results, models.TopActionResult{
			Action: action,
			Count:  count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top actions: %w", err)
	}

	return results, nil
}
