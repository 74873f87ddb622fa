package analytics

import (
	"context"
	"sort"
	"time"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
	defaultActors    = 10
	maxActors        = 100
)

// TrendBucket counts audit entries of one action on one day.
type TrendBucket struct {
	Day    string `json:"day"`
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// ActorActivity ranks an actor by audit entries written.
type ActorActivity struct {
	ActorID     int64  `json:"actor_id"`
	DisplayName string `json:"display_name"`
	Entries     int    `json:"entries"`
}

// Trends returns daily counts per action over the trailing days, today included.
func (s *Service) Trends(ctx context.Context, days int) ([]TrendBucket, error) {
	days = clamp(days, defaultTrendDays, maxTrendDays)
	loader := func(ctx context.Context) (interface{}, error) {
		now := s.now().UTC()
		since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))
		rows, err := s.audit.DailyActionCounts(ctx, since)
		if err != nil {
			return nil, err
		}
		buckets := make([]TrendBucket, 0, len(rows))
		for _, row := range rows {
			buckets = append(buckets, TrendBucket{Day: row.Day.Format("2006-01-02"), Action: row.Action, Count: row.Count})
		}
		sort.SliceStable(buckets, func(i, j int) bool {
			if buckets[i].Day != buckets[j].Day {
				return buckets[i].Day < buckets[j].Day
			}
			return buckets[i].Action < buckets[j].Action
		})
		return buckets, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]TrendBucket), nil
	}
	key, err := s.cache.BuildKey(ctx, keyTrends(days))
	if err != nil {
		return nil, err
	}
	var buckets []TrendBucket
	if err := s.cache.FetchJSON(ctx, key, &buckets, loader); err != nil {
		return nil, err
	}
	return buckets, nil
}

// MostActiveActors ranks actors by entry count, highest first, ties by id. Actors whose
// user no longer exists are skipped and the next ones move up.
func (s *Service) MostActiveActors(ctx context.Context, limit int) ([]ActorActivity, error) {
	limit = clamp(limit, defaultActors, maxActors)
	loader := func(ctx context.Context) (interface{}, error) {
		out := make([]ActorActivity, 0, limit)
		for offset := 0; len(out) < limit; offset += limit {
			counts, err := s.audit.ActorCounts(ctx, limit, offset)
			if err != nil {
				return nil, err
			}
			if len(counts) == 0 {
				break
			}
			ids := make([]int64, 0, len(counts))
			for _, c := range counts {
				ids = append(ids, c.ActorID)
			}
			names, err := s.members.DisplayNames(ctx, ids)
			if err != nil {
				return nil, err
			}
			for _, c := range counts {
				name, ok := names[c.ActorID]
				if !ok {
					continue
				}
				out = append(out, ActorActivity{ActorID: c.ActorID, DisplayName: name, Entries: c.Count})
				if len(out) == limit {
					break
				}
			}
			if len(counts) < limit {
				break
			}
		}
		return out, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]ActorActivity), nil
	}
	key, err := s.cache.BuildKey(ctx, keyActors(limit))
	if err != nil {
		return nil, err
	}
	var actors []ActorActivity
	if err := s.cache.FetchJSON(ctx, key, &actors, loader); err != nil {
		return nil, err
	}
	return actors, nil
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
