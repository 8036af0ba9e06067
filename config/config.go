package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full tracker configuration.
type Config struct {
	Tracker TrackerConfig `yaml:"tracker"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// TrackerConfig controls scanning, alerting and the bankroll ledger.
type TrackerConfig struct {
	PollIntervalMinutes int      `yaml:"poll_interval_minutes"`
	ReferenceBook       string   `yaml:"reference_book"`
	Sportsbooks         []string `yaml:"sportsbooks"`
	GameMarkets         []string `yaml:"game_markets"`
	PropMarkets         []string `yaml:"prop_markets"`
	MinEVThreshold      float64  `yaml:"min_ev_threshold"`      // percent
	MovementThreshold   float64  `yaml:"movement_threshold"`    // percent odds change
	ConsensusMinBooks   int      `yaml:"consensus_min_books"`
	StartingBankroll    float64  `yaml:"starting_bankroll"`
	ScoresDaysFrom      int      `yaml:"scores_days_from"`
}

// APIConfig holds The Odds API connection settings. The key comes from the
// environment, never from the YAML file.
type APIConfig struct {
	Key      string `yaml:"-"`
	BaseURL  string `yaml:"base_url"`
	SportKey string `yaml:"sport_key"`
	Regions  string `yaml:"regions"`
}

// StorageConfig controls where data is persisted.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // SQLite file path, or ":memory:"
}

// LogConfig controls log format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML config file and the .env file if present. Environment
// variables override YAML values for the keys they map to.
func Load(path string) (*Config, error) {
	// Load .env if present (missing file is fine)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// PollInterval returns the polling cadence as a time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Tracker.PollIntervalMinutes) * time.Minute
}

// AllBookmakers is every book to request from the API: the whitelisted
// sportsbooks plus the reference book.
func (c *Config) AllBookmakers() []string {
	books := make([]string, 0, len(c.Tracker.Sportsbooks)+1)
	books = append(books, c.Tracker.Sportsbooks...)
	return append(books, c.Tracker.ReferenceBook)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("POLL_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.PollIntervalMinutes = n
		}
	}
	if v := os.Getenv("MIN_EV_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tracker.MinEVThreshold = f
		}
	}
	if v := os.Getenv("LINE_MOVEMENT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tracker.MovementThreshold = f
		}
	}
	if v := os.Getenv("STARTING_BANKROLL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tracker.StartingBankroll = f
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Tracker.PollIntervalMinutes <= 0 {
		cfg.Tracker.PollIntervalMinutes = 5
	}
	if cfg.Tracker.ReferenceBook == "" {
		cfg.Tracker.ReferenceBook = "pinnacle"
	}
	if len(cfg.Tracker.Sportsbooks) == 0 {
		cfg.Tracker.Sportsbooks = []string{
			"bet365", "fanduel", "draftkings", "betmgm", "betway",
			"williamhill_us", "sportsinteraction", "bet99", "proline",
			"espnbet", "hardrockbet", "fliff", "betrivers", "bovada",
		}
	}
	if len(cfg.Tracker.GameMarkets) == 0 {
		cfg.Tracker.GameMarkets = []string{"h2h", "spreads", "totals"}
	}
	if len(cfg.Tracker.PropMarkets) == 0 {
		cfg.Tracker.PropMarkets = []string{
			"player_points", "player_rebounds", "player_assists",
			"player_threes", "player_blocks", "player_steals",
			"player_points_rebounds_assists", "player_points_rebounds",
			"player_points_assists", "player_rebounds_assists",
		}
	}
	if cfg.Tracker.MinEVThreshold <= 0 {
		cfg.Tracker.MinEVThreshold = 1.0
	}
	if cfg.Tracker.MovementThreshold <= 0 {
		cfg.Tracker.MovementThreshold = 3.0
	}
	if cfg.Tracker.ConsensusMinBooks <= 0 {
		cfg.Tracker.ConsensusMinBooks = 3
	}
	if cfg.Tracker.StartingBankroll <= 0 {
		cfg.Tracker.StartingBankroll = 1000
	}
	if cfg.Tracker.ScoresDaysFrom <= 0 {
		cfg.Tracker.ScoresDaysFrom = 3
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.the-odds-api.com/v4"
	}
	if cfg.API.SportKey == "" {
		cfg.API.SportKey = "basketball_nba"
	}
	if cfg.API.Regions == "" {
		cfg.API.Regions = "ca,us,us2,uk,eu,au"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "tracker.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
