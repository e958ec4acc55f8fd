package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AdarshScore is the materialized composite score of a village. It is upserted by the score engine only.
type AdarshScore struct {
	VillageID             uuid.UUID      `gorm:"column:village_id;type:uuid;primaryKey" json:"village_id"`
	OverallScore          float64        `gorm:"column:overall_score;type:decimal(5,2);not null;default:0" json:"overall_score"`
	InfrastructureScore   float64        `gorm:"column:infrastructure_score;type:decimal(5,2);not null;default:0" json:"infrastructure_score"`
	CompletionRateScore   float64        `gorm:"column:completion_rate_score;type:decimal(5,2);not null;default:0" json:"completion_rate_score"`
	SocialIndicatorsScore float64        `gorm:"column:social_indicators_score;type:decimal(5,2);not null;default:0" json:"social_indicators_score"`
	FeedbackScore         float64        `gorm:"column:feedback_score;type:decimal(5,2);not null;default:0" json:"feedback_score"`
	FundUtilizationScore  float64        `gorm:"column:fund_utilization_score;type:decimal(5,2);not null;default:0" json:"fund_utilization_score"`
	IsAdarshCandidate     bool           `gorm:"column:is_adarsh_candidate;not null;default:false" json:"is_adarsh_candidate"`
	ScoreBreakdown        datatypes.JSON `gorm:"column:score_breakdown;type:jsonb" json:"score_breakdown"`
	PendingWork           datatypes.JSON `gorm:"column:pending_work;type:jsonb" json:"pending_work"`
	UpdatedAt             time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (AdarshScore) TableName() string {
	return "adarsh_scores"
}
