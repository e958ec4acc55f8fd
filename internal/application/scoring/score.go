package scoring

import (
	"fmt"
	"math"
	"sort"

	"setu-backend/internal/application/completion"
	"setu-backend/internal/config"
	"setu-backend/internal/domain"
)

// Category is one of the five weighted dimensions of the Adarsh score.
type Category string

const (
	CategoryInfrastructure   Category = "infrastructure"
	CategoryCompletionRate   Category = "completion_rate"
	CategorySocialIndicators Category = "social_indicators"
	CategoryFeedback         Category = "feedback"
	CategoryFundUtilization  Category = "fund_utilization"
)

// Categories in declaration order; pending work ties are broken by this order.
var Categories = []Category{
	CategoryInfrastructure,
	CategoryCompletionRate,
	CategorySocialIndicators,
	CategoryFeedback,
	CategoryFundUtilization,
}

var actions = map[Category]string{
	CategoryInfrastructure:   "Sanction infrastructure projects for missing health centres and schools",
	CategoryCompletionRate:   "Expedite pending checkpoint approvals and field submissions",
	CategorySocialIndicators: "Run literacy and employment drives and mobilise villagers to vote on priorities",
	CategoryFeedback:         "Resolve rejected and revision-requested submissions with the field teams",
	CategoryFundUtilization:  "Release more sanctioned funds to ongoing projects",
}

// Weights of each category; they must sum to 1.
type Weights struct {
	Infrastructure   float64 `json:"infrastructure"`
	CompletionRate   float64 `json:"completion_rate"`
	SocialIndicators float64 `json:"social_indicators"`
	Feedback         float64 `json:"feedback"`
	FundUtilization  float64 `json:"fund_utilization"`
}

func (w Weights) of(c Category) float64 {
	switch c {
	case CategoryInfrastructure:
		return w.Infrastructure
	case CategoryCompletionRate:
		return w.CompletionRate
	case CategorySocialIndicators:
		return w.SocialIndicators
	case CategoryFeedback:
		return w.Feedback
	case CategoryFundUtilization:
		return w.FundUtilization
	}
	return 0
}

// InfrastructureMix splits the infrastructure sub-score between the surveyed index and facility coverage.
type InfrastructureMix struct {
	Index      float64 `json:"index"`
	Healthcare float64 `json:"healthcare"`
	Schools    float64 `json:"schools"`
}

// SocialMix splits the social indicators sub-score between literacy, employment and villager engagement.
type SocialMix struct {
	Literacy   float64 `json:"literacy"`
	Employment float64 `json:"employment"`
	Engagement float64 `json:"engagement"`
}

// Config parameterises the engine.
type Config struct {
	Weights        Weights              `json:"weights"`
	Threshold      float64              `json:"threshold"`
	Targets        map[Category]float64 `json:"targets"`
	Infrastructure InfrastructureMix    `json:"infrastructure_mix"`
	Social         SocialMix            `json:"social_mix"`
	// Facility counts at which the healthcare and school components of infrastructure reach 100.
	HealthcareTarget float64 `json:"healthcare_target"`
	SchoolTarget     float64 `json:"school_target"`
	// Total votes at which villager engagement reaches 100.
	VoteTarget int `json:"vote_target"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Infrastructure:   0.2,
			CompletionRate:   0.2,
			SocialIndicators: 0.2,
			Feedback:         0.2,
			FundUtilization:  0.2,
		},
		Threshold:        85,
		Targets:          uniformTargets(85),
		Infrastructure:   InfrastructureMix{Index: 0.4, Healthcare: 0.3, Schools: 0.3},
		Social:           SocialMix{Literacy: 0.35, Employment: 0.35, Engagement: 0.3},
		HealthcareTarget: 5,
		SchoolTarget:     5,
		VoteTarget:       50,
	}
}

// ConfigFrom builds an engine config from application settings.
func ConfigFrom(s config.ScoreConfig) Config {
	cfg := DefaultConfig()
	cfg.Weights = Weights{
		Infrastructure:   s.WeightInfrastructure,
		CompletionRate:   s.WeightCompletionRate,
		SocialIndicators: s.WeightSocialIndicators,
		Feedback:         s.WeightFeedback,
		FundUtilization:  s.WeightFundUtilization,
	}
	cfg.Threshold = s.Threshold
	cfg.Targets = uniformTargets(s.Target)
	if s.InfraMixIndex+s.InfraMixHealthcare+s.InfraMixSchools > 0 {
		cfg.Infrastructure = InfrastructureMix{Index: s.InfraMixIndex, Healthcare: s.InfraMixHealthcare, Schools: s.InfraMixSchools}
	}
	if s.SocialMixLiteracy+s.SocialMixEmployment+s.SocialMixEngagement > 0 {
		cfg.Social = SocialMix{Literacy: s.SocialMixLiteracy, Employment: s.SocialMixEmployment, Engagement: s.SocialMixEngagement}
	}
	if s.HealthcareTarget > 0 {
		cfg.HealthcareTarget = s.HealthcareTarget
	}
	if s.SchoolTarget > 0 {
		cfg.SchoolTarget = s.SchoolTarget
	}
	if s.VoteTarget > 0 {
		cfg.VoteTarget = s.VoteTarget
	}
	return cfg
}

func uniformTargets(t float64) map[Category]float64 {
	out := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		out[c] = t
	}
	return out
}

func (c Config) Validate() error {
	sum := 0.0
	for _, cat := range Categories {
		w := c.Weights.of(cat)
		if w < 0 {
			return fmt.Errorf("weight for %s must not be negative", cat)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %.4f", sum)
	}
	if err := validateMix("infrastructure mix", c.Infrastructure.Index, c.Infrastructure.Healthcare, c.Infrastructure.Schools); err != nil {
		return err
	}
	if err := validateMix("social mix", c.Social.Literacy, c.Social.Employment, c.Social.Engagement); err != nil {
		return err
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be within 0..100")
	}
	if c.HealthcareTarget <= 0 || c.SchoolTarget <= 0 || c.VoteTarget <= 0 {
		return fmt.Errorf("facility and vote targets must be positive")
	}
	return nil
}

func validateMix(name string, parts ...float64) error {
	sum := 0.0
	for _, p := range parts {
		if p < 0 {
			return fmt.Errorf("%s must not have negative parts", name)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%s must sum to 1, got %.4f", name, sum)
	}
	return nil
}

// ProjectProgress is the checkpoint tally of one project.
type ProjectProgress struct {
	Total     int
	Completed int
}

// Inputs is the snapshot of village data the score is computed from.
type Inputs struct {
	Metrics    domain.BaselineMetrics
	Projects   []ProjectProgress
	TotalVotes int
	Approved   int
	Rejected   int
	Revision   int
	Allocated  float64
	Utilized   float64
}

// Breakdown holds the five sub-scores, each within 0..100.
type Breakdown struct {
	Infrastructure   float64 `json:"infrastructure"`
	CompletionRate   float64 `json:"completion_rate"`
	SocialIndicators float64 `json:"social_indicators"`
	Feedback         float64 `json:"feedback"`
	FundUtilization  float64 `json:"fund_utilization"`
}

func (b Breakdown) of(c Category) float64 {
	return Weights(b).of(c)
}

// Gap is one unit of pending work: a category below its target.
type Gap struct {
	Category     Category `json:"category"`
	CurrentScore float64  `json:"current_score"`
	Target       float64  `json:"target"`
	Gap          float64  `json:"gap"`
	Action       string   `json:"action"`
}

// Result is the outcome of Compute.
type Result struct {
	Overall           float64   `json:"overall_score"`
	Breakdown         Breakdown `json:"breakdown"`
	Weights           Weights   `json:"weights"`
	IsAdarshCandidate bool      `json:"is_adarsh_candidate"`
	PendingWork       []Gap     `json:"pending_work"`
}

// InfrastructureScore blends the surveyed infrastructure index with healthcare facility and school
// coverage against their targets, in the proportions of cfg.Infrastructure.
func InfrastructureScore(cfg Config, m domain.BaselineMetrics) float64 {
	index, _ := m.Get(domain.MetricInfrastructureScore)
	health, _ := m.Get(domain.MetricHealthcareFacilities)
	schools, _ := m.Get(domain.MetricSchools)
	mix := cfg.Infrastructure
	s := mix.Index*clamp(index) +
		mix.Healthcare*clamp(100*health/cfg.HealthcareTarget) +
		mix.Schools*clamp(100*schools/cfg.SchoolTarget)
	return round2(clamp(s))
}

// CompletionRateScore is the mean completion of projects that have at least one checkpoint.
func CompletionRateScore(projects []ProjectProgress) float64 {
	n, sum := 0, 0
	for _, p := range projects {
		if p.Total <= 0 {
			continue
		}
		n++
		sum += completion.Percentage(p.Completed, p.Total)
	}
	if n == 0 {
		return 0
	}
	return round2(clamp(float64(sum) / float64(n)))
}

// SocialIndicatorsScore blends literacy, employment and villager engagement in the proportions of cfg.Social.
// Engagement grows with total priority votes up to cfg.VoteTarget.
func SocialIndicatorsScore(cfg Config, m domain.BaselineMetrics, totalVotes int) float64 {
	literacy, _ := m.Get(domain.MetricLiteracyRate)
	employment, _ := m.Get(domain.MetricEmploymentRate)
	engagement := 0.0
	if totalVotes > 0 {
		engagement = clamp(100 * float64(totalVotes) / float64(cfg.VoteTarget))
	}
	mix := cfg.Social
	return round2(clamp(mix.Literacy*clamp(literacy) + mix.Employment*clamp(employment) + mix.Engagement*engagement))
}

// FeedbackScore is the share of reviewed submissions that were approved.
func FeedbackScore(approved, rejected, revision int) float64 {
	reviewed := approved + rejected + revision
	if reviewed <= 0 {
		return 0
	}
	return round2(clamp(100 * float64(approved) / float64(reviewed)))
}

// FundUtilizationScore is utilized/allocated as a percentage, 0 when nothing is allocated.
func FundUtilizationScore(allocated, utilized float64) float64 {
	if allocated <= 0 || utilized <= 0 {
		return 0
	}
	return round2(clamp(100 * utilized / allocated))
}

// Compute derives the full score from in. It never fails: missing data scores 0.
func Compute(cfg Config, in Inputs) Result {
	b := Breakdown{
		Infrastructure:   InfrastructureScore(cfg, in.Metrics),
		CompletionRate:   CompletionRateScore(in.Projects),
		SocialIndicators: SocialIndicatorsScore(cfg, in.Metrics, in.TotalVotes),
		Feedback:         FeedbackScore(in.Approved, in.Rejected, in.Revision),
		FundUtilization:  FundUtilizationScore(in.Allocated, in.Utilized),
	}
	overall := 0.0
	for _, c := range Categories {
		overall += cfg.Weights.of(c) * b.of(c)
	}
	overall = round2(clamp(overall))
	return Result{
		Overall:           overall,
		Breakdown:         b,
		Weights:           cfg.Weights,
		IsAdarshCandidate: overall >= cfg.Threshold,
		PendingWork:       PendingWork(cfg, b),
	}
}

// PendingWork lists categories strictly below target, largest gap first.
func PendingWork(cfg Config, b Breakdown) []Gap {
	gaps := make([]Gap, 0, len(Categories))
	for _, c := range Categories {
		target := cfg.Targets[c]
		current := b.of(c)
		if current >= target {
			continue
		}
		gaps = append(gaps, Gap{
			Category:     c,
			CurrentScore: current,
			Target:       target,
			Gap:          round2(target - current),
			Action:       actions[c],
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Gap > gaps[j].Gap })
	return gaps
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
