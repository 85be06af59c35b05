package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	latestKey  = "sweep:latest"
	historyKey = "sweep:history"

	// historyDepth bounds the retained run history.
	historyDepth = 20
)

// ErrNoReport is returned when no sweep has been stored yet.
var ErrNoReport = errors.New("sweep: no report stored")

// Store persists sweep reports in Redis: the latest report under a fixed key
// plus a bounded run history.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore instantiates the store. A zero ttl keeps reports until the next
// sweep overwrites them.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Save stores the report as the latest and prepends it to the history.
func (s *Store) Save(ctx context.Context, report Report) error {
	if s == nil || s.client == nil {
		return errors.New("sweep: store not configured")
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, latestKey, raw, s.ttl)
	pipe.LPush(ctx, historyKey, raw)
	pipe.LTrim(ctx, historyKey, 0, historyDepth-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Latest returns the most recent report.
func (s *Store) Latest(ctx context.Context) (Report, error) {
	if s == nil || s.client == nil {
		return Report{}, ErrNoReport
	}
	raw, err := s.client.Get(ctx, latestKey).Bytes()
	if err == redis.Nil {
		return Report{}, ErrNoReport
	}
	if err != nil {
		return Report{}, err
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return Report{}, err
	}
	return report, nil
}

// History returns up to n past reports, newest first.
func (s *Store) History(ctx context.Context, n int) ([]Report, error) {
	if s == nil || s.client == nil {
		return nil, ErrNoReport
	}
	if n <= 0 || n > historyDepth {
		n = historyDepth
	}
	rows, err := s.client.LRange(ctx, historyKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(rows))
	for _, row := range rows {
		var report Report
		if err := json.Unmarshal([]byte(row), &report); err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}
