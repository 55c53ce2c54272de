package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Penalty strategy names accepted in PENALTY_STRATEGY.
const (
	PenaltyStrategyFlat         = "FLAT"
	PenaltyStrategyDailyPercent = "DAILY_PERCENT"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Servicing parameters.
	PenaltyStrategy         string
	FlatPenaltyAmount       decimal.Decimal
	DailyPenaltyRatePercent decimal.Decimal
	BackdatedWindowDays     int
	AllowPrepayment         bool
	LegalEscalationDPD      int
	BusinessTimezone        string
	Location                *time.Location

	// Batch parameters.
	DPDWorkerCount int
	DPDTimeBudget  time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PENALTY_STRATEGY", PenaltyStrategyFlat)
	viper.SetDefault("FLAT_PENALTY_AMOUNT", "500")
	viper.SetDefault("DAILY_PENALTY_RATE_PERCENT", "0.1")
	viper.SetDefault("BACKDATED_WINDOW_DAYS", 7)
	viper.SetDefault("ALLOW_PREPAYMENT", false)
	viper.SetDefault("LEGAL_ESCALATION_DPD", 90)
	viper.SetDefault("BUSINESS_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DPD_WORKER_COUNT", 8)
	viper.SetDefault("DPD_TIME_BUDGET", "30m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.PenaltyStrategy = viper.GetString("PENALTY_STRATEGY")
	if cfg.PenaltyStrategy != PenaltyStrategyFlat && cfg.PenaltyStrategy != PenaltyStrategyDailyPercent {
		log.Printf("Warning: Invalid value for PENALTY_STRATEGY ('%s'). Defaulting to %s.\n", cfg.PenaltyStrategy, PenaltyStrategyFlat)
		cfg.PenaltyStrategy = PenaltyStrategyFlat
	}

	flatPenalty, err := decimal.NewFromString(viper.GetString("FLAT_PENALTY_AMOUNT"))
	if err != nil || flatPenalty.IsNegative() {
		flatPenalty = decimal.NewFromInt(500)
		log.Printf("Warning: Invalid value for FLAT_PENALTY_AMOUNT. Defaulting to %s.\n", flatPenalty.String())
	}
	cfg.FlatPenaltyAmount = flatPenalty

	dailyRate, err := decimal.NewFromString(viper.GetString("DAILY_PENALTY_RATE_PERCENT"))
	if err != nil || dailyRate.IsNegative() {
		dailyRate = decimal.NewFromFloat(0.1)
		log.Printf("Warning: Invalid value for DAILY_PENALTY_RATE_PERCENT. Defaulting to %s.\n", dailyRate.String())
	}
	cfg.DailyPenaltyRatePercent = dailyRate

	cfg.BackdatedWindowDays = viper.GetInt("BACKDATED_WINDOW_DAYS")
	if cfg.BackdatedWindowDays < 0 {
		log.Printf("Warning: Negative BACKDATED_WINDOW_DAYS (%d). Defaulting to 7.\n", cfg.BackdatedWindowDays)
		cfg.BackdatedWindowDays = 7
	}

	cfg.AllowPrepayment = viper.GetBool("ALLOW_PREPAYMENT")

	cfg.LegalEscalationDPD = viper.GetInt("LEGAL_ESCALATION_DPD")
	if cfg.LegalEscalationDPD <= 0 {
		log.Printf("Warning: Invalid LEGAL_ESCALATION_DPD (%d). Defaulting to 90.\n", cfg.LegalEscalationDPD)
		cfg.LegalEscalationDPD = 90
	}

	cfg.BusinessTimezone = viper.GetString("BUSINESS_TIMEZONE")
	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		log.Printf("Warning: Invalid BUSINESS_TIMEZONE ('%s'). Defaulting to UTC.\n", cfg.BusinessTimezone)
		loc = time.UTC
	}
	cfg.Location = loc

	cfg.DPDWorkerCount = viper.GetInt("DPD_WORKER_COUNT")
	if cfg.DPDWorkerCount <= 0 {
		log.Printf("Warning: Invalid DPD_WORKER_COUNT (%d). Defaulting to 8.\n", cfg.DPDWorkerCount)
		cfg.DPDWorkerCount = 8
	}

	budgetStr := viper.GetString("DPD_TIME_BUDGET")
	budget, err := time.ParseDuration(budgetStr)
	if err != nil || budget <= 0 {
		budget = 30 * time.Minute
		log.Printf("Warning: Invalid value for DPD_TIME_BUDGET ('%s'). Defaulting to %s.\n", budgetStr, budget.String())
	}
	cfg.DPDTimeBudget = budget

	return cfg, nil
}
