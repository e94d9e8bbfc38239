// Package tournaments ranks creators inside time-boxed sales competitions.
// Rankings are read-time aggregations over completed orders: nothing is
// persisted per-rank, so a ranking is only as stale as its cache entry.
package tournaments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/creatorcart/backend/pkg/cache"
	"github.com/creatorcart/backend/pkg/logger"
	"github.com/creatorcart/backend/pkg/metrics"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrTournamentNotFound is returned when no tournament matches the slug
var ErrTournamentNotFound = errors.New("tournament not found")

// rankingCacheTTL bounds how stale a served leaderboard can be
const rankingCacheTTL = 30 * time.Second

// RankingRow is one creator's standing in a tournament
type RankingRow struct {
	Rank        int    `json:"rank"`
	CreatorID   string `json:"creator_id"`
	OrderCount  int    `json:"order_count"`
	TotalAmount int64  `json:"total_amount"`
}

// Service aggregates orders into tournament leaderboards
type Service struct {
	db      *store.Client
	cache   *cache.Client
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewService creates a new tournaments service. cacheClient may be nil to
// disable the ranking cache.
func NewService(db *store.Client, cacheClient *cache.Client, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{db: db, cache: cacheClient, logger: log, metrics: m}
}

// GetBySlug loads a tournament by its slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*store.Tournament, error) {
	var tournament store.Tournament
	if err := s.db.DB.WithContext(ctx).First(&tournament, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	return &tournament, nil
}

// List returns tournaments, newest start first
func (s *Service) List(ctx context.Context, limit int) ([]store.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []store.Tournament
	err := s.db.DB.WithContext(ctx).
		Order("start_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return rows, nil
}

// Rankings aggregates the leaderboard for a tournament: completed orders
// with creator attribution inside [StartAt, EndAt], scoped to the
// tournament's product when set, grouped by creator, ordered by summed gross
// amount descending. Ranks are sequential from 1; equal sums keep distinct
// consecutive ranks in aggregation order.
func (s *Service) Rankings(ctx context.Context, tournament *store.Tournament, limit int) ([]RankingRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if s.metrics != nil {
		s.metrics.RankingQueries.Inc()
	}

	cacheKey := fmt.Sprintf("tournament:rankings:%s:%d", tournament.Slug, limit)
	if rows, ok := s.cachedRankings(ctx, cacheKey); ok {
		return rows, nil
	}

	query := s.db.DB.WithContext(ctx).
		Model(&store.Order{}).
		Where("status = ?", store.OrderStatusCompleted).
		Where("creator_id IS NOT NULL").
		Where("created_at >= ? AND created_at <= ?", tournament.StartAt, tournament.EndAt)
	if tournament.ProductID != nil {
		query = query.Where("product_id = ?", *tournament.ProductID)
	}

	var orders []store.Order
	if err := query.Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load tournament orders: %w", err)
	}

	rows := aggregate(orders)
	if len(rows) > limit {
		rows = rows[:limit]
	}

	s.storeCachedRankings(ctx, cacheKey, rows)

	return rows, nil
}

// RankFor finds the caller's own standing in a ranking. A nil return means
// unranked; the rank is never estimated.
func RankFor(rows []RankingRow, creatorID string) *RankingRow {
	if creatorID == "" {
		return nil
	}
	for i := range rows {
		if rows[i].CreatorID == creatorID {
			return &rows[i]
		}
	}
	return nil
}

// TransitionStatuses advances tournaments along scheduled -> live -> finished
// based on the current time. Invoked by the cron job; returns the number of
// tournaments whose status changed.
func (s *Service) TransitionStatuses(ctx context.Context, now time.Time) (int, error) {
	transitioned := 0

	live := s.db.DB.WithContext(ctx).
		Model(&store.Tournament{}).
		Where("status = ? AND start_at <= ? AND end_at > ?", store.TournamentStatusScheduled, now, now).
		Update("status", store.TournamentStatusLive)
	if live.Error != nil {
		return 0, fmt.Errorf("failed to promote scheduled tournaments: %w", live.Error)
	}
	transitioned += int(live.RowsAffected)

	finished := s.db.DB.WithContext(ctx).
		Model(&store.Tournament{}).
		Where("status IN (?, ?) AND end_at <= ?", store.TournamentStatusScheduled, store.TournamentStatusLive, now).
		Update("status", store.TournamentStatusFinished)
	if finished.Error != nil {
		return transitioned, fmt.Errorf("failed to finish tournaments: %w", finished.Error)
	}
	transitioned += int(finished.RowsAffected)

	if transitioned > 0 {
		s.logger.Info("tournament statuses transitioned", "count", transitioned)
	}

	return transitioned, nil
}

// aggregate groups orders by creator and assigns ranks. The sort is stable
// over first-seen order, so creators with equal sums keep the position the
// scan gave them and still receive distinct sequential ranks.
func aggregate(orders []store.Order) []RankingRow {
	totals := make(map[string]*RankingRow)
	var seen []string

	for _, order := range orders {
		creatorID := *order.CreatorID
		row, ok := totals[creatorID]
		if !ok {
			row = &RankingRow{CreatorID: creatorID}
			totals[creatorID] = row
			seen = append(seen, creatorID)
		}
		row.OrderCount++
		row.TotalAmount += order.Amount
	}

	rows := make([]RankingRow, 0, len(seen))
	for _, creatorID := range seen {
		rows = append(rows, *totals[creatorID])
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalAmount > rows[j].TotalAmount
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows
}

func (s *Service) cachedRankings(ctx context.Context, key string) ([]RankingRow, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("ranking cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var rows []RankingRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (s *Service) storeCachedRankings(ctx context.Context, key string, rows []RankingRow) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), rankingCacheTTL); err != nil {
		s.logger.Debug("ranking cache write failed", "key", key, "error", err)
	}
}
