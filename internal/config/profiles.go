// Package config provides the immutable validation profiles consumed by the
// pipeline. All thresholds and weights live here; no other code should
// duplicate them.
package config

import (
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Profile names understood by LoadProfile.
const (
	ProfileStandard = "standard"
	ProfileDeep     = "deep"
)

// Default thresholds shared across profiles.
const (
	DefaultMinSegments        = 50
	DefaultMinWords           = 100
	DefaultConfidenceFloor    = 0.70
	DefaultSimilarityFloor    = 0.80
	DefaultDepthPassThreshold = 0.70
	DefaultDepthWarnThreshold = 0.60
	DefaultQualityThreshold   = 0.60
)

// TranscriptThresholds configures the transcript quality gate.
type TranscriptThresholds struct {
	MinChars    int `yaml:"min_chars" mapstructure:"min_chars"`
	MinSegments int `yaml:"min_segments" mapstructure:"min_segments"`
	MinWords    int `yaml:"min_words" mapstructure:"min_words"`
}

// EntityThresholds configures the entity consistency check.
type EntityThresholds struct {
	ConfidenceFloor float64 `yaml:"confidence_floor" mapstructure:"confidence_floor"`
	// Placeholders is the case-insensitive denylist of generic names that can
	// never be a verified subject.
	Placeholders []string `yaml:"placeholders" mapstructure:"placeholders"`
}

// AnalysisThresholds configures the structural/depth analysis validator.
type AnalysisThresholds struct {
	// TopicsPass and TopicsWarn define the stepped topic-count gate:
	// count >= TopicsPass is PASS, count >= TopicsWarn is WARN, below is CRITICAL.
	TopicsPass int `yaml:"topics_pass" mapstructure:"topics_pass"`
	TopicsWarn int `yaml:"topics_warn" mapstructure:"topics_warn"`

	RequiredLayers []string `yaml:"required_layers" mapstructure:"required_layers"`

	PatternsPass int `yaml:"patterns_pass" mapstructure:"patterns_pass"`
	PatternsWarn int `yaml:"patterns_warn" mapstructure:"patterns_warn"`

	RequiredSections []string `yaml:"required_sections" mapstructure:"required_sections"`
	SectionWordMin   int      `yaml:"section_word_min" mapstructure:"section_word_min"`
	SectionWordMax   int      `yaml:"section_word_max" mapstructure:"section_word_max"`

	// MinQuoteChars is the minimum length of a technical metric's transcript quote.
	MinQuoteChars int `yaml:"min_quote_chars" mapstructure:"min_quote_chars"`

	ScreenshotsPass int `yaml:"screenshots_pass" mapstructure:"screenshots_pass"`
	ScreenshotsWarn int `yaml:"screenshots_warn" mapstructure:"screenshots_warn"`
}

// FabricationThresholds configures the metric fabrication detector.
type FabricationThresholds struct {
	// SimilarityFloor is the minimum token-sort similarity between an
	// extracted claim and its best transcript window for the claim to count
	// as supported.
	SimilarityFloor float64 `yaml:"similarity_floor" mapstructure:"similarity_floor"`
	// MaxReported caps how many unsupported claims are listed in messages.
	MaxReported int `yaml:"max_reported" mapstructure:"max_reported"`
}

// DepthWeights are the sub-score weights of the technical depth scorer.
type DepthWeights struct {
	ProjectDepth             float64 `yaml:"project_depth" mapstructure:"project_depth"`
	TechnicalSpecificity     float64 `yaml:"technical_specificity" mapstructure:"technical_specificity"`
	ImplementationDetail     float64 `yaml:"implementation_detail" mapstructure:"implementation_detail"`
	MetricQuality            float64 `yaml:"metric_quality" mapstructure:"metric_quality"`
	ArchitectureCompleteness float64 `yaml:"architecture_completeness" mapstructure:"architecture_completeness"`
}

// DepthThresholds configures the technical depth scorer.
type DepthThresholds struct {
	Weights DepthWeights `yaml:"weights" mapstructure:"weights"`

	// TopicSaturation is the distinct-topic count at which project_depth caps at 1.0.
	TopicSaturation int `yaml:"topic_saturation" mapstructure:"topic_saturation"`
	// MinUsageWords is the minimum usage-context length for a topic to count
	// as non-trivially described.
	MinUsageWords int `yaml:"min_usage_words" mapstructure:"min_usage_words"`
	// TargetDensity is the concrete-token density per section at which
	// technical_specificity caps at 1.0.
	TargetDensity float64 `yaml:"target_density" mapstructure:"target_density"`

	PassThreshold float64 `yaml:"pass_threshold" mapstructure:"pass_threshold"`
	WarnThreshold float64 `yaml:"warn_threshold" mapstructure:"warn_threshold"`

	// RequiredSections is the section roster the assembled document must carry.
	RequiredSections []string `yaml:"required_sections" mapstructure:"required_sections"`

	// Word-count bands for the assembled document. The hard band is CRITICAL,
	// the ideal band is WARN.
	WordCountHardMin  int `yaml:"word_count_hard_min" mapstructure:"word_count_hard_min"`
	WordCountHardMax  int `yaml:"word_count_hard_max" mapstructure:"word_count_hard_max"`
	WordCountIdealMin int `yaml:"word_count_ideal_min" mapstructure:"word_count_ideal_min"`
	WordCountIdealMax int `yaml:"word_count_ideal_max" mapstructure:"word_count_ideal_max"`
}

// QualityWeights are the dimension weights of the structural/formatting scorer.
type QualityWeights struct {
	Structure     float64 `yaml:"structure" mapstructure:"structure"`
	ContentDepth  float64 `yaml:"content_depth" mapstructure:"content_depth"`
	TopicMentions float64 `yaml:"topic_mentions" mapstructure:"topic_mentions"`
	Formatting    float64 `yaml:"formatting" mapstructure:"formatting"`
}

// QualityThresholds configures the structural/formatting scorer used by the
// lighter-weight document variant.
type QualityThresholds struct {
	Weights          QualityWeights `yaml:"weights" mapstructure:"weights"`
	RequiredSections []string       `yaml:"required_sections" mapstructure:"required_sections"`
	MinWords         map[string]int `yaml:"min_words" mapstructure:"min_words"`
	// FormattingPenalty is deducted from the formatting dimension per missing
	// element (lists, links, code blocks, headings).
	FormattingPenalty float64 `yaml:"formatting_penalty" mapstructure:"formatting_penalty"`
	Threshold         float64 `yaml:"threshold" mapstructure:"threshold"`
}

// Profile bundles every stage's configuration. A Profile is supplied at
// pipeline construction time and never mutated mid-run.
type Profile struct {
	Name        string                `yaml:"name" mapstructure:"name"`
	Transcript  TranscriptThresholds  `yaml:"transcript" mapstructure:"transcript"`
	Entity      EntityThresholds      `yaml:"entity" mapstructure:"entity"`
	Analysis    AnalysisThresholds    `yaml:"analysis" mapstructure:"analysis"`
	Fabrication FabricationThresholds `yaml:"fabrication" mapstructure:"fabrication"`
	Depth       DepthThresholds       `yaml:"depth" mapstructure:"depth"`
	Quality     QualityThresholds     `yaml:"quality" mapstructure:"quality"`
	// TopicRoster lists well-known topic names used for mention-richness
	// scoring and technical specificity.
	TopicRoster []string `yaml:"topic_roster" mapstructure:"topic_roster"`
	// EntityRoster lists well-known subject names used as drift candidates.
	EntityRoster []string `yaml:"entity_roster" mapstructure:"entity_roster"`
}

// defaultPlaceholders are generic tokens that can never be a real subject name.
var defaultPlaceholders = []string{"company", "organization", "tech", "unknown", "tbd", "n/a", "none"}

// defaultEntityRoster seeds the drift candidate list when no roster snapshot
// is supplied. Matches the set the roster matcher consults.
var defaultEntityRoster = []string{
	"Spotify", "Netflix", "Uber", "Airbnb", "Adobe", "Apple", "Google",
	"Microsoft", "Amazon", "Facebook", "Meta", "Twitter", "LinkedIn",
	"Slack", "Dropbox", "GitHub", "GitLab", "Atlassian", "Salesforce",
	"Oracle", "IBM", "Red Hat", "Intel", "Nvidia", "Tesla", "Intuit",
	"PayPal", "eBay", "Etsy", "Lyft", "DoorDash", "Stripe", "Square", "Shopify",
}

// defaultTopicRoster seeds topic-mention scoring with well-known cloud-native
// project names.
var defaultTopicRoster = []string{
	"Kubernetes", "Prometheus", "Envoy", "CoreDNS", "containerd", "Fluentd",
	"Jaeger", "Vitess", "Helm", "Argo", "Cilium", "Flux", "Linkerd", "etcd",
	"CRI-O", "Harbor", "Falco", "Rook", "TiKV", "gRPC", "Istio", "Knative",
	"OpenTelemetry",
}

// NewStandard returns the "standard" profile used for the lighter-weight
// case-study document type.
func NewStandard() *Profile {
	p := baseProfile()
	p.Name = ProfileStandard
	p.Transcript.MinChars = 1000
	return p
}

// NewDeep returns the "deep" profile used for reference architectures, with
// higher transcript minimums.
func NewDeep() *Profile {
	p := baseProfile()
	p.Name = ProfileDeep
	p.Transcript.MinChars = 2000
	return p
}

func baseProfile() *Profile {
	return &Profile{
		Transcript: TranscriptThresholds{
			MinSegments: DefaultMinSegments,
			MinWords:    DefaultMinWords,
		},
		Entity: EntityThresholds{
			ConfidenceFloor: DefaultConfidenceFloor,
			Placeholders:    defaultPlaceholders,
		},
		Analysis: AnalysisThresholds{
			TopicsPass:     5,
			TopicsWarn:     4,
			RequiredLayers: []string{"infrastructure", "platform", "application"},
			PatternsPass:   2,
			PatternsWarn:   1,
			RequiredSections: []string{
				"background",
				"technical_challenge",
				"architecture_overview",
				"implementation_details",
				"results_and_impact",
				"lessons_learned",
			},
			SectionWordMin:  200,
			SectionWordMax:  800,
			MinQuoteChars:   10,
			ScreenshotsPass: 6,
			ScreenshotsWarn: 4,
		},
		Fabrication: FabricationThresholds{
			SimilarityFloor: DefaultSimilarityFloor,
			MaxReported:     5,
		},
		Depth: DepthThresholds{
			Weights: DepthWeights{
				ProjectDepth:             0.25,
				TechnicalSpecificity:     0.20,
				ImplementationDetail:     0.20,
				MetricQuality:            0.20,
				ArchitectureCompleteness: 0.15,
			},
			TopicSaturation: 7,
			MinUsageWords:   5,
			TargetDensity:   2.0,
			PassThreshold:   DefaultDepthPassThreshold,
			WarnThreshold:   DefaultDepthWarnThreshold,
			RequiredSections: []string{
				"executive_summary",
				"background",
				"technical_challenge",
				"architecture_overview",
				"technology_stack",
				"implementation_details",
				"results_and_impact",
				"lessons_learned",
				"conclusion",
			},
			WordCountHardMin:  2000,
			WordCountHardMax:  5000,
			WordCountIdealMin: 2500,
			WordCountIdealMax: 4500,
		},
		Quality: QualityThresholds{
			Weights: QualityWeights{
				Structure:     0.30,
				ContentDepth:  0.40,
				TopicMentions: 0.20,
				Formatting:    0.10,
			},
			RequiredSections: []string{"Overview", "Challenge", "Solution", "Impact", "Conclusion"},
			MinWords: map[string]int{
				"Overview":   50,
				"Challenge":  100,
				"Solution":   150,
				"Impact":     100,
				"Conclusion": 50,
			},
			FormattingPenalty: 0.25,
			Threshold:         DefaultQualityThreshold,
		},
		TopicRoster:  defaultTopicRoster,
		EntityRoster: defaultEntityRoster,
	}
}

// LoadProfile resolves a named built-in profile.
func LoadProfile(name string) (*Profile, error) {
	switch name {
	case ProfileStandard, "":
		return NewStandard(), nil
	case ProfileDeep:
		return NewDeep(), nil
	default:
		return nil, fmt.Errorf("unknown profile %q: must be %s or %s", name, ProfileStandard, ProfileDeep)
	}
}

// LoadFile loads a profile from a YAML file, starting from the built-in
// profile named inside the file (defaulting to standard) and overlaying the
// file's values on top.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var name struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(data, &name); err != nil {
		return nil, fmt.Errorf("parsing profile file %s: %w", path, err)
	}

	p, err := LoadProfile(name.Name)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing profile file %s: %w", path, err)
	}
	return p, nil
}

// ApplyOverrides decodes an untyped override map (for example from a run
// manifest) onto the profile. Unknown keys are an error so typos fail loudly.
func (p *Profile) ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      p,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(overrides); err != nil {
		return fmt.Errorf("applying profile overrides: %w", err)
	}
	return nil
}
