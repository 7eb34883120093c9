// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CatalogConfig holds settings for the bibliographic catalogs.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	EnableOpenAlex        bool `json:"enable_openalex" yaml:"enable_openalex" mapstructure:"enable_openalex"`
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar" mapstructure:"enable_semantic_scholar"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// OpenAlexInterval is the minimum gap between OpenAlex requests.
	OpenAlexInterval time.Duration `json:"openalex_interval" yaml:"openalex_interval" mapstructure:"openalex_interval"`

	// SemanticScholarInterval is the minimum gap between Semantic Scholar requests.
	SemanticScholarInterval time.Duration `json:"semantic_scholar_interval" yaml:"semantic_scholar_interval" mapstructure:"semantic_scholar_interval"`

	// SearchLimit is the number of name-search candidates requested per catalog (10-50).
	SearchLimit int `json:"search_limit" yaml:"search_limit" mapstructure:"search_limit"`

	// MaxRetries is the transport-level retry budget for HTTP 429. Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// BreakerFailures is the consecutive failure count that opens a catalog's circuit.
	BreakerFailures uint32 `json:"breaker_failures" yaml:"breaker_failures" mapstructure:"breaker_failures"`

	// BreakerTimeout is how long an open circuit stays open.
	BreakerTimeout time.Duration `json:"breaker_timeout" yaml:"breaker_timeout" mapstructure:"breaker_timeout"`
}

// InstitutionMatchConfig holds the tunable institution-overlap thresholds.
type InstitutionMatchConfig struct {
	// ShortThreshold is the overlap required when the shorter side has fewer than LongMinTokens tokens.
	ShortThreshold int `json:"short_threshold" yaml:"short_threshold" mapstructure:"short_threshold"`

	// LongThreshold is the overlap required for longer institution names.
	LongThreshold int `json:"long_threshold" yaml:"long_threshold" mapstructure:"long_threshold"`

	// LongMinTokens is the meaningful-token count at which a name counts as long.
	LongMinTokens int `json:"long_min_tokens" yaml:"long_min_tokens" mapstructure:"long_min_tokens"`
}

// Index backends.
const (
	IndexBackendHNSW = "hnsw"
	IndexBackendNone = "none"
)

// EmbeddingConfig holds settings for the embedding engine.
type EmbeddingConfig struct {
	Dimensions int `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions"`

	// IndexBackend selects the nearest-neighbour index: "hnsw" or "none" (brute force).
	IndexBackend string `json:"index_backend" yaml:"index_backend" mapstructure:"index_backend"`
}

// ExpertiseConfig holds settings for the expertise index.
type ExpertiseConfig struct {
	// HistoryDir contains one subdirectory of historical manuscript records per journal.
	HistoryDir string `json:"history_dir" yaml:"history_dir" mapstructure:"history_dir"`

	// IndexDir holds expertise.db and expertise.hnsw.
	IndexDir string `json:"index_dir" yaml:"index_dir" mapstructure:"index_dir"`
}

// CandidateConfig holds settings for the candidate finder and report caps.
type CandidateConfig struct {
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`
	MaxConflicted int `json:"max_conflicted" yaml:"max_conflicted" mapstructure:"max_conflicted"`

	// IndexK is the number of expertise-index hits requested.
	IndexK int `json:"index_k" yaml:"index_k" mapstructure:"index_k"`

	// CatalogLimit is the number of works requested per catalog topic search.
	CatalogLimit int `json:"catalog_limit" yaml:"catalog_limit" mapstructure:"catalog_limit"`

	// EnrichTop is the number of top candidates resolved through identity resolution.
	EnrichTop int `json:"enrich_top" yaml:"enrich_top" mapstructure:"enrich_top"`

	WeightTopic    float64 `json:"weight_topic" yaml:"weight_topic" mapstructure:"weight_topic"`
	WeightSemantic float64 `json:"weight_semantic" yaml:"weight_semantic" mapstructure:"weight_semantic"`
	WeightResponse float64 `json:"weight_response" yaml:"weight_response" mapstructure:"weight_response"`
}

// DeskRejectConfig holds the desk-rejection weights and thresholds.
type DeskRejectConfig struct {
	RejectThreshold    float64 `json:"reject_threshold" yaml:"reject_threshold" mapstructure:"reject_threshold"`
	SignalThreshold    float64 `json:"signal_threshold" yaml:"signal_threshold" mapstructure:"signal_threshold"`
	MinAgreeingSignals int     `json:"min_agreeing_signals" yaml:"min_agreeing_signals" mapstructure:"min_agreeing_signals"`
	MinAbstractWords   int     `json:"min_abstract_words" yaml:"min_abstract_words" mapstructure:"min_abstract_words"`

	WeightScope     float64 `json:"weight_scope" yaml:"weight_scope" mapstructure:"weight_scope"`
	WeightStructure float64 `json:"weight_structure" yaml:"weight_structure" mapstructure:"weight_structure"`
	WeightReports   float64 `json:"weight_reports" yaml:"weight_reports" mapstructure:"weight_reports"`
	WeightModel     float64 `json:"weight_model" yaml:"weight_model" mapstructure:"weight_model"`

	// DegradedPenalty is subtracted from confidence per missing optional signal.
	DegradedPenalty float64 `json:"degraded_penalty" yaml:"degraded_penalty" mapstructure:"degraded_penalty"`
}

// PredictorConfig holds settings for the learned predictors.
type PredictorConfig struct {
	ModelsDir    string  `json:"models_dir" yaml:"models_dir" mapstructure:"models_dir"`
	MinSamples   int     `json:"min_samples" yaml:"min_samples" mapstructure:"min_samples"`
	Folds        int     `json:"folds" yaml:"folds" mapstructure:"folds"`
	Iterations   int     `json:"iterations" yaml:"iterations" mapstructure:"iterations"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate" mapstructure:"learning_rate"`
	L2           float64 `json:"l2" yaml:"l2" mapstructure:"l2"`
}

// PipelineSettings holds orchestrator paths and limits.
type PipelineSettings struct {
	ManuscriptsDir string `json:"manuscripts_dir" yaml:"manuscripts_dir" mapstructure:"manuscripts_dir"`
	ReportsDir     string `json:"reports_dir" yaml:"reports_dir" mapstructure:"reports_dir"`
	FeedbackFile   string `json:"feedback_file" yaml:"feedback_file" mapstructure:"feedback_file"`

	// SkipConfidence is the desk-rejection confidence above which candidate search is skipped.
	SkipConfidence float64 `json:"skip_confidence" yaml:"skip_confidence" mapstructure:"skip_confidence"`

	// Workers is the number of manuscripts processed concurrently in batch mode.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// JournalConfig describes one journal: its scope and the platform that hosts it.
type JournalConfig struct {
	Code string `json:"code" yaml:"code" mapstructure:"code"`
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Platform is the manuscript platform kind: scholarone, editorial_manager, ejpress, generic.
	Platform string `json:"platform" yaml:"platform" mapstructure:"platform"`

	// Scope lists the journal's scope keywords.
	Scope []string `json:"scope" yaml:"scope" mapstructure:"scope"`

	// ScopeDescription is the free-text aims-and-scope statement.
	ScopeDescription string `json:"scope_description,omitempty" yaml:"scope_description,omitempty" mapstructure:"scope_description"`

	// AwaitingStatuses overrides the platform's manuscript statuses that need referees.
	AwaitingStatuses []string `json:"awaiting_statuses,omitempty" yaml:"awaiting_statuses,omitempty" mapstructure:"awaiting_statuses"`

	// ActiveRefereeStatuses overrides the platform's referee statuses that count as active.
	ActiveRefereeStatuses []string `json:"active_referee_statuses,omitempty" yaml:"active_referee_statuses,omitempty" mapstructure:"active_referee_statuses"`

	// RequiredReferees is the number of active referees after which a
	// manuscript stops awaiting referees. Zero means 1.
	RequiredReferees int `json:"required_referees,omitempty" yaml:"required_referees,omitempty" mapstructure:"required_referees"`
}

// LogConfig selects log level and encoding.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all component configurations.
type Config struct {
	Log         LogConfig              `json:"log" yaml:"log" mapstructure:"log"`
	Catalog     CatalogConfig          `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Institution InstitutionMatchConfig `json:"institution" yaml:"institution" mapstructure:"institution"`
	Embedding   EmbeddingConfig        `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Expertise   ExpertiseConfig        `json:"expertise" yaml:"expertise" mapstructure:"expertise"`
	Candidates  CandidateConfig        `json:"candidates" yaml:"candidates" mapstructure:"candidates"`
	DeskReject  DeskRejectConfig       `json:"desk_reject" yaml:"desk_reject" mapstructure:"desk_reject"`
	Predictors  PredictorConfig        `json:"predictors" yaml:"predictors" mapstructure:"predictors"`
	Pipeline    PipelineSettings       `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	Journals    []JournalConfig        `json:"journals" yaml:"journals" mapstructure:"journals"`
}

// Journal returns the configuration for the journal code, case-insensitively.
func (c Config) Journal(code string) (JournalConfig, bool) {
	for _, j := range c.Journals {
		if strings.EqualFold(j.Code, code) {
			return j, true
		}
	}
	return JournalConfig{}, false
}

// DefaultConfig returns the configuration used when no file or flag overrides a value.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Catalog: CatalogConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "referee-engine/0.1",
			},
			EnableOpenAlex:          true,
			EnableSemanticScholar:   true,
			OpenAlexInterval:        100 * time.Millisecond,
			SemanticScholarInterval: time.Second,
			SearchLimit:             25,
			BreakerFailures:         5,
			BreakerTimeout:          60 * time.Second,
		},
		Institution: InstitutionMatchConfig{
			ShortThreshold: 1,
			LongThreshold:  2,
			LongMinTokens:  3,
		},
		Embedding: EmbeddingConfig{
			Dimensions:   256,
			IndexBackend: IndexBackendHNSW,
		},
		Expertise: ExpertiseConfig{
			HistoryDir: "data/history",
			IndexDir:   "data/index",
		},
		Candidates: CandidateConfig{
			MaxCandidates:  15,
			MaxConflicted:  5,
			IndexK:         30,
			CatalogLimit:   20,
			EnrichTop:      10,
			WeightTopic:    0.4,
			WeightSemantic: 0.6,
			WeightResponse: 0.25,
		},
		DeskReject: DeskRejectConfig{
			RejectThreshold:    0.6,
			SignalThreshold:    0.5,
			MinAgreeingSignals: 2,
			MinAbstractWords:   50,
			WeightScope:        0.45,
			WeightStructure:    0.25,
			WeightReports:      0.3,
			WeightModel:        0.35,
			DegradedPenalty:    0.05,
		},
		Predictors: PredictorConfig{
			ModelsDir:    "data/models",
			MinSamples:   20,
			Folds:        5,
			Iterations:   500,
			LearningRate: 0.1,
			L2:           0.01,
		},
		Pipeline: PipelineSettings{
			ManuscriptsDir: "data/manuscripts",
			ReportsDir:     "data/reports",
			FeedbackFile:   "data/feedback.jsonl",
			SkipConfidence: 0.85,
			Workers:        1,
		},
	}
}
