package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	Rewards RewardsConfig `mapstructure:"rewards"`
	Random  RandomConfig  `mapstructure:"random"`
}

// ServerConfig contains the HTTP adapter settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// Storage engines.
const (
	EngineMemory   = "memory"
	EngineJSON     = "json"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

// StorageConfig selects and configures the persisted store backend.
type StorageConfig struct {
	Engine      string `mapstructure:"engine" validate:"required,oneof=memory json sqlite postgres"`
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Engine postgres,omitempty,url"`
}

// Phase policies. Single runs only the phase of the chosen activity;
// sequential runs reading, a transition screen, then writing.
const (
	PhasePolicySingle     = "single"
	PhasePolicySequential = "sequential"
)

// SessionConfig contains training session rules and timings.
type SessionConfig struct {
	QuestionCount      int             `mapstructure:"question_count" validate:"gt=0,lte=100"`
	PhasePolicy        string          `mapstructure:"phase_policy" validate:"oneof=single sequential"`
	MilestoneInterval  int             `mapstructure:"milestone_interval" validate:"gt=0"`
	FeedbackDelay      time.Duration   `mapstructure:"feedback_delay" validate:"gt=0"`
	RewardPopupDelay   time.Duration   `mapstructure:"reward_popup_delay" validate:"gte=0"`
	FoodPopupDelay     time.Duration   `mapstructure:"food_popup_delay" validate:"gte=0"`
	FoodAfterExitDelay time.Duration   `mapstructure:"food_after_exit_delay" validate:"gte=0"`
	Evolution          EvolutionConfig `mapstructure:"evolution"`
}

// EvolutionConfig holds the offsets of the evolution animation steps,
// measured from entering the sequence.
type EvolutionConfig struct {
	Transform time.Duration `mapstructure:"transform" validate:"gt=0"`
	Reveal    time.Duration `mapstructure:"reveal" validate:"gtfield=Transform"`
	Complete  time.Duration `mapstructure:"complete" validate:"gtfield=Reveal"`
}

// RewardsConfig seeds the reward pool on first run.
type RewardsConfig struct {
	Seed []string `mapstructure:"seed" validate:"dive,required"`
}

// RandomConfig controls the shared random source. Zero means a fresh
// cryptographic seed per process.
type RandomConfig struct {
	Seed int64 `mapstructure:"seed"`
}
