package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "submission-media", cfg.MediaBucket)
	assert.Equal(t, 0.2, cfg.Score.WeightFeedback)
	assert.Equal(t, 85.0, cfg.Score.Threshold)
	assert.Equal(t, 10*time.Minute, cfg.Score.CacheTTL)
}

func TestFromViper_ProductionDatabaseURL(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{
		"APP_ENV":           "production",
		"DATABASE_URL_DEV":  "postgres://dev",
		"DATABASE_URL_PROD": "postgres://prod",
		"STORAGE_URL":       "https://store.example.org/",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://prod", cfg.DatabaseURL)
	assert.Equal(t, "https://store.example.org", cfg.StorageURL)
}

func TestFromViper_RejectsBadWeights(t *testing.T) {
	_, err := fromViper(newViper(map[string]interface{}{"SCORE_WEIGHT_INFRASTRUCTURE": 0.5}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")
}

func TestFromViper_RejectsUnknownDriver(t *testing.T) {
	_, err := fromViper(newViper(map[string]interface{}{"DATABASE_DRIVER": "mysql"}))
	assert.Error(t, err)
}

func TestScoreConfig_Validate(t *testing.T) {
	s := ScoreConfig{
		WeightInfrastructure: 0.3, WeightCompletionRate: 0.3, WeightSocialIndicators: 0.1,
		WeightFeedback: 0.1, WeightFundUtilization: 0.2, Threshold: 80, Target: 85, VoteTarget: 10,
		InfraMixIndex: 0.5, InfraMixHealthcare: 0.25, InfraMixSchools: 0.25,
		SocialMixLiteracy: 0.4, SocialMixEmployment: 0.4, SocialMixEngagement: 0.2,
		HealthcareTarget: 3, SchoolTarget: 4,
	}
	assert.NoError(t, s.Validate())
	s.VoteTarget = 0
	assert.Error(t, s.Validate())
	s.VoteTarget = 10
	s.Threshold = 120
	assert.Error(t, s.Validate())
	s.Threshold = 80
	s.SchoolTarget = 0
	assert.Error(t, s.Validate())
}

func TestFromViper_ScoreMixes(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.Score.InfraMixIndex)
	assert.Equal(t, 0.35, cfg.Score.SocialMixLiteracy)
	assert.Equal(t, 5.0, cfg.Score.HealthcareTarget)
	assert.Equal(t, 5.0, cfg.Score.SchoolTarget)

	cfg, err = fromViper(newViper(map[string]interface{}{
		"SCORE_HEALTHCARE_TARGET": 2,
		"SCORE_SCHOOL_TARGET":     8,
	}))
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Score.HealthcareTarget)
	assert.Equal(t, 8.0, cfg.Score.SchoolTarget)

	_, err = fromViper(newViper(map[string]interface{}{"SCORE_INFRA_MIX_INDEX": 0.6}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCORE_INFRA_MIX_*")

	_, err = fromViper(newViper(map[string]interface{}{"SCORE_SOCIAL_MIX_ENGAGEMENT": -0.3, "SCORE_SOCIAL_MIX_LITERACY": 0.95}))
	assert.Error(t, err)
}
