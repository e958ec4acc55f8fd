package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"setu-backend/internal/domain"
	"setu-backend/internal/infrastructure/database"
	"setu-backend/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const cacheKeyPrefix = "score:village:"

var ErrVillageNotFound = apperror.NotFound("Village not found")

// Recomputer is what write paths need from the engine: recompute inside their transaction,
// then drop the cached read after commit.
type Recomputer interface {
	Recompute(ctx context.Context, tx *gorm.DB, villageID uuid.UUID) (*domain.AdarshScore, error)
	Invalidate(ctx context.Context, villageID uuid.UUID)
}

// Engine materializes Adarsh scores into adarsh_scores and serves them through a Redis read cache.
// Rdb may be nil, in which case reads go straight to the database.
type Engine struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Config   Config
	CacheTTL time.Duration
}

// VillageScore is the read model returned to callers.
type VillageScore struct {
	VillageID         uuid.UUID `json:"village_id"`
	OverallScore      float64   `json:"overall_score"`
	Breakdown         Breakdown `json:"breakdown"`
	Weights           Weights   `json:"weights"`
	IsAdarshCandidate bool      `json:"is_adarsh_candidate"`
	PendingWork       []Gap     `json:"pending_work"`
	ConfigVersion     string    `json:"config_version"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// storedBreakdown is the JSON kept in adarsh_scores.score_breakdown.
type storedBreakdown struct {
	Scores  Breakdown `json:"scores"`
	Weights Weights   `json:"weights"`
	Config  string    `json:"config,omitempty"`
}

// Fingerprint identifies the scoring parameters a stored score was computed under.
func (c Config) Fingerprint() string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

func cacheKey(villageID uuid.UUID) string {
	return cacheKeyPrefix + villageID.String()
}

type projectTally struct {
	ProjectID uuid.UUID
	Total     int64
	Completed int64
}

type statusCount struct {
	Status domain.SubmissionStatus
	N      int64
}

type ledgerSum struct {
	TransactionType domain.TransactionType
	Total           float64
}

// gather reads the score inputs for a village using tx. Missing data yields zero values.
func (e *Engine) gather(ctx context.Context, tx *gorm.DB, village *domain.Village) (Inputs, error) {
	in := Inputs{Metrics: village.BaselineMetrics}
	db := tx.WithContext(ctx)

	var tallies []projectTally
	err := db.Table("projects AS p").
		Select("p.id AS project_id, COUNT(DISTINCT c.id) AS total, COUNT(DISTINCT CASE WHEN s.id IS NOT NULL THEN c.id END) AS completed").
		Joins("LEFT JOIN checkpoints c ON c.project_id = p.id").
		Joins("LEFT JOIN submissions s ON s.checkpoint_id = c.id AND s.status = ?", domain.SubmissionApproved).
		Where("p.village_id = ?", village.ID).
		Group("p.id").
		Scan(&tallies).Error
	if err != nil {
		return in, err
	}
	for _, t := range tallies {
		in.Projects = append(in.Projects, ProjectProgress{Total: int(t.Total), Completed: int(t.Completed)})
	}

	var counts []statusCount
	err = db.Table("submissions AS s").
		Select("s.status AS status, COUNT(*) AS n").
		Joins("JOIN checkpoints c ON c.id = s.checkpoint_id").
		Joins("JOIN projects p ON p.id = c.project_id").
		Where("p.village_id = ?", village.ID).
		Group("s.status").
		Scan(&counts).Error
	if err != nil {
		return in, err
	}
	for _, c := range counts {
		switch c.Status {
		case domain.SubmissionApproved:
			in.Approved = int(c.N)
		case domain.SubmissionRejected:
			in.Rejected = int(c.N)
		case domain.SubmissionRequiresRevision:
			in.Revision = int(c.N)
		case domain.SubmissionPending:
		}
	}

	var sums []ledgerSum
	err = db.Table("fund_transactions AS f").
		Select("f.transaction_type AS transaction_type, COALESCE(SUM(f.amount), 0) AS total").
		Joins("JOIN projects p ON p.id = f.project_id").
		Where("p.village_id = ?", village.ID).
		Group("f.transaction_type").
		Scan(&sums).Error
	if err != nil {
		return in, err
	}
	for _, s := range sums {
		switch s.TransactionType {
		case domain.TransactionAllocation:
			in.Allocated = s.Total
		case domain.TransactionRelease:
			in.Utilized = s.Total
		}
	}

	var votes int64
	err = db.Model(&domain.PriorityVote{}).
		Select("COALESCE(SUM(total_votes), 0)").
		Where("village_id = ?", village.ID).
		Scan(&votes).Error
	if err != nil {
		return in, err
	}
	in.TotalVotes = int(votes)
	return in, nil
}

// Recompute derives the village score from current data and upserts adarsh_scores, all with tx.
// On Postgres the village row is locked for the rest of the transaction so concurrent triggers
// serialize on the same village.
func (e *Engine) Recompute(ctx context.Context, tx *gorm.DB, villageID uuid.UUID) (*domain.AdarshScore, error) {
	q := tx.WithContext(ctx)
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var village domain.Village
	if err := q.Where("id = ?", villageID).First(&village).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVillageNotFound
		}
		return nil, err
	}

	in, err := e.gather(ctx, tx, &village)
	if err != nil {
		return nil, err
	}
	res := Compute(e.Config, in)

	breakdown, err := json.Marshal(storedBreakdown{Scores: res.Breakdown, Weights: res.Weights, Config: e.Config.Fingerprint()})
	if err != nil {
		return nil, err
	}
	pending, err := json.Marshal(res.PendingWork)
	if err != nil {
		return nil, err
	}
	row := &domain.AdarshScore{
		VillageID:             villageID,
		OverallScore:          res.Overall,
		InfrastructureScore:   res.Breakdown.Infrastructure,
		CompletionRateScore:   res.Breakdown.CompletionRate,
		SocialIndicatorsScore: res.Breakdown.SocialIndicators,
		FeedbackScore:         res.Breakdown.Feedback,
		FundUtilizationScore:  res.Breakdown.FundUtilization,
		IsAdarshCandidate:     res.IsAdarshCandidate,
		ScoreBreakdown:        datatypes.JSON(breakdown),
		PendingWork:           datatypes.JSON(pending),
		UpdatedAt:             time.Now().UTC(),
	}
	err = tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "village_id"}},
		UpdateAll: true,
	}).Create(row).Error
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("village_id", villageID.String()).
		Float64("overall_score", res.Overall).
		Bool("is_adarsh_candidate", res.IsAdarshCandidate).
		Int("pending_categories", len(res.PendingWork)).
		Msg("adarsh score recomputed")
	return row, nil
}

// Invalidate drops the cached score. Cache failures are logged; the next read repopulates it.
func (e *Engine) Invalidate(ctx context.Context, villageID uuid.UUID) {
	if e.Rdb == nil {
		return
	}
	if err := e.Rdb.Del(ctx, cacheKey(villageID)).Err(); err != nil {
		log.Warn().Err(err).Str("village_id", villageID.String()).Msg("score cache invalidate failed")
	}
}

// GetVillageScore returns the village score from cache, else the stored row, else computes and stores it.
// A cached or stored score computed under other scoring parameters is recomputed.
func (e *Engine) GetVillageScore(ctx context.Context, villageID uuid.UUID) (*VillageScore, error) {
	version := e.Config.Fingerprint()
	if cached := e.readCache(ctx, villageID); cached != nil && cached.ConfigVersion == version {
		return cached, nil
	}

	var out *VillageScore
	var row domain.AdarshScore
	err := e.DB.WithContext(ctx).Where("village_id = ?", villageID).First(&row).Error
	switch {
	case err == nil:
		if out, err = toVillageScore(&row); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	if out == nil || out.ConfigVersion != version {
		if out != nil {
			log.Info().Str("village_id", villageID.String()).Msg("stored score predates scoring config, recomputing")
		}
		if err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			stored, err := e.Recompute(ctx, tx, villageID)
			if err != nil {
				return err
			}
			row = *stored
			return nil
		}); err != nil {
			return nil, err
		}
		if out, err = toVillageScore(&row); err != nil {
			return nil, err
		}
	}
	e.writeCache(ctx, out)
	return out, nil
}

func (e *Engine) readCache(ctx context.Context, villageID uuid.UUID) *VillageScore {
	if e.Rdb == nil {
		return nil
	}
	b, err := e.Rdb.Get(ctx, cacheKey(villageID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("village_id", villageID.String()).Msg("score cache read failed")
		}
		return nil
	}
	var out VillageScore
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return &out
}

func (e *Engine) writeCache(ctx context.Context, s *VillageScore) {
	if e.Rdb == nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := e.Rdb.Set(ctx, cacheKey(s.VillageID), b, e.CacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("village_id", s.VillageID.String()).Msg("score cache write failed")
	}
}

func toVillageScore(row *domain.AdarshScore) (*VillageScore, error) {
	out := &VillageScore{
		VillageID:         row.VillageID,
		OverallScore:      row.OverallScore,
		IsAdarshCandidate: row.IsAdarshCandidate,
		UpdatedAt:         row.UpdatedAt,
		PendingWork:       []Gap{},
		Breakdown: Breakdown{
			Infrastructure:   row.InfrastructureScore,
			CompletionRate:   row.CompletionRateScore,
			SocialIndicators: row.SocialIndicatorsScore,
			Feedback:         row.FeedbackScore,
			FundUtilization:  row.FundUtilizationScore,
		},
	}
	if len(row.ScoreBreakdown) > 0 {
		var sb storedBreakdown
		if err := json.Unmarshal(row.ScoreBreakdown, &sb); err != nil {
			return nil, err
		}
		out.Weights = sb.Weights
		out.ConfigVersion = sb.Config
	}
	if len(row.PendingWork) > 0 {
		if err := json.Unmarshal(row.PendingWork, &out.PendingWork); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LeaderboardEntry is one ranked village.
type LeaderboardEntry struct {
	VillageID         uuid.UUID `json:"village_id"`
	Name              string    `json:"name"`
	State             string    `json:"state"`
	District          string    `json:"district"`
	OverallScore      float64   `json:"overall_score"`
	IsAdarshCandidate bool      `json:"is_adarsh_candidate"`
}

// Leaderboard returns active villages ordered by stored overall score, highest first.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []LeaderboardEntry
	err := e.DB.WithContext(ctx).
		Table("adarsh_scores AS a").
		Select("a.village_id, v.name, v.state, v.district, a.overall_score, a.is_adarsh_candidate").
		Joins("JOIN villages v ON v.id = a.village_id").
		Where("v.is_active = ?", true).
		Order("a.overall_score DESC, v.name ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []LeaderboardEntry{}
	}
	return out, nil
}

// RecomputeAll recomputes every active village, one transaction each, and returns how many were updated.
func (e *Engine) RecomputeAll(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	if err := e.DB.WithContext(ctx).Model(&domain.Village{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := e.Recompute(ctx, tx, id)
			return err
		})
		if err != nil {
			return n, err
		}
		e.Invalidate(ctx, id)
		n++
	}
	log.Info().Int("villages", n).Msg("adarsh scores recomputed")
	return n, nil
}
