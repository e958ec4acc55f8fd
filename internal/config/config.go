package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseDriver      string // postgres (default) or sqlite
	DatabaseURL         string
	RedisURL            string
	StorageURL          string // Supabase-compatible storage base URL, used for signed upload URLs and public URLs
	StorageSecretKey    string // service role key
	MediaBucket         string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	BrevoAPIKey         string // empty disables outgoing email
	MailFrom            string
	PublicRateLimit     int // requests per minute per IP on the public tracker
	Score               ScoreConfig
}

// ScoreConfig is the tunable part of the Adarsh score engine.
type ScoreConfig struct {
	WeightInfrastructure   float64
	WeightCompletionRate   float64
	WeightSocialIndicators float64
	WeightFeedback         float64
	WeightFundUtilization  float64
	Threshold              float64
	Target                 float64
	// Shares of the infrastructure sub-score: surveyed index, healthcare coverage, school coverage.
	InfraMixIndex      float64
	InfraMixHealthcare float64
	InfraMixSchools    float64
	// Shares of the social indicators sub-score: literacy, employment, vote engagement.
	SocialMixLiteracy   float64
	SocialMixEmployment float64
	SocialMixEngagement float64
	HealthcareTarget    float64
	SchoolTarget        float64
	VoteTarget          int
	CacheTTL            time.Duration
}

// Validate checks the weights sum to 1 and the bounds are in range.
func (s ScoreConfig) Validate() error {
	weights := []float64{s.WeightInfrastructure, s.WeightCompletionRate, s.WeightSocialIndicators, s.WeightFeedback, s.WeightFundUtilization}
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("score weights must not be negative")
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("score weights must sum to 1, got %.4f", sum)
	}
	if err := mixSumsToOne("SCORE_INFRA_MIX_*", s.InfraMixIndex, s.InfraMixHealthcare, s.InfraMixSchools); err != nil {
		return err
	}
	if err := mixSumsToOne("SCORE_SOCIAL_MIX_*", s.SocialMixLiteracy, s.SocialMixEmployment, s.SocialMixEngagement); err != nil {
		return err
	}
	if s.HealthcareTarget <= 0 || s.SchoolTarget <= 0 {
		return fmt.Errorf("SCORE_HEALTHCARE_TARGET and SCORE_SCHOOL_TARGET must be positive")
	}
	if s.Threshold < 0 || s.Threshold > 100 {
		return fmt.Errorf("ADARSH_THRESHOLD must be within 0..100")
	}
	if s.Target < 0 || s.Target > 100 {
		return fmt.Errorf("SCORE_TARGET must be within 0..100")
	}
	if s.VoteTarget <= 0 {
		return fmt.Errorf("SCORE_VOTE_TARGET must be positive")
	}
	return nil
}

func mixSumsToOne(name string, parts ...float64) error {
	sum := 0.0
	for _, p := range parts {
		if p < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%s must sum to 1, got %.4f", name, sum)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("MEDIA_BUCKET", "submission-media")
	v.SetDefault("PUBLIC_RATE_LIMIT", 60)
	v.SetDefault("SCORE_WEIGHT_INFRASTRUCTURE", 0.2)
	v.SetDefault("SCORE_WEIGHT_COMPLETION_RATE", 0.2)
	v.SetDefault("SCORE_WEIGHT_SOCIAL_INDICATORS", 0.2)
	v.SetDefault("SCORE_WEIGHT_FEEDBACK", 0.2)
	v.SetDefault("SCORE_WEIGHT_FUND_UTILIZATION", 0.2)
	v.SetDefault("ADARSH_THRESHOLD", 85)
	v.SetDefault("SCORE_TARGET", 85)
	v.SetDefault("SCORE_INFRA_MIX_INDEX", 0.4)
	v.SetDefault("SCORE_INFRA_MIX_HEALTHCARE", 0.3)
	v.SetDefault("SCORE_INFRA_MIX_SCHOOLS", 0.3)
	v.SetDefault("SCORE_SOCIAL_MIX_LITERACY", 0.35)
	v.SetDefault("SCORE_SOCIAL_MIX_EMPLOYMENT", 0.35)
	v.SetDefault("SCORE_SOCIAL_MIX_ENGAGEMENT", 0.3)
	v.SetDefault("SCORE_HEALTHCARE_TARGET", 5)
	v.SetDefault("SCORE_SCHOOL_TARGET", 5)
	v.SetDefault("SCORE_VOTE_TARGET", 50)
	v.SetDefault("SCORE_CACHE_TTL", "10m")
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	env := v.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := v.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = v.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = v.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER")))
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", driver)
	}

	score := ScoreConfig{
		WeightInfrastructure:   v.GetFloat64("SCORE_WEIGHT_INFRASTRUCTURE"),
		WeightCompletionRate:   v.GetFloat64("SCORE_WEIGHT_COMPLETION_RATE"),
		WeightSocialIndicators: v.GetFloat64("SCORE_WEIGHT_SOCIAL_INDICATORS"),
		WeightFeedback:         v.GetFloat64("SCORE_WEIGHT_FEEDBACK"),
		WeightFundUtilization:  v.GetFloat64("SCORE_WEIGHT_FUND_UTILIZATION"),
		Threshold:              v.GetFloat64("ADARSH_THRESHOLD"),
		Target:                 v.GetFloat64("SCORE_TARGET"),
		InfraMixIndex:          v.GetFloat64("SCORE_INFRA_MIX_INDEX"),
		InfraMixHealthcare:     v.GetFloat64("SCORE_INFRA_MIX_HEALTHCARE"),
		InfraMixSchools:        v.GetFloat64("SCORE_INFRA_MIX_SCHOOLS"),
		SocialMixLiteracy:      v.GetFloat64("SCORE_SOCIAL_MIX_LITERACY"),
		SocialMixEmployment:    v.GetFloat64("SCORE_SOCIAL_MIX_EMPLOYMENT"),
		SocialMixEngagement:    v.GetFloat64("SCORE_SOCIAL_MIX_ENGAGEMENT"),
		HealthcareTarget:       v.GetFloat64("SCORE_HEALTHCARE_TARGET"),
		SchoolTarget:           v.GetFloat64("SCORE_SCHOOL_TARGET"),
		VoteTarget:             v.GetInt("SCORE_VOTE_TARGET"),
		CacheTTL:               v.GetDuration("SCORE_CACHE_TTL"),
	}
	if err := score.Validate(); err != nil {
		return nil, err
	}

	return &Config{
		Env:                 env,
		Port:                v.GetString("PORT"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseDriver:      driver,
		DatabaseURL:         dbURL,
		RedisURL:            v.GetString("REDIS_URL"),
		StorageURL:          strings.TrimRight(v.GetString("STORAGE_URL"), "/"),
		StorageSecretKey:    v.GetString("STORAGE_SECRET_KEY"),
		MediaBucket:         v.GetString("MEDIA_BUCKET"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		BrevoAPIKey:         v.GetString("BREVO_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		PublicRateLimit:     v.GetInt("PUBLIC_RATE_LIMIT"),
		Score:               score,
	}, nil
}
