package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Username string `mapstructure:"IMT_USERNAME"`
	Password string `mapstructure:"IMT_PASSWORD"`
	FullName string `mapstructure:"NOM_PRENOM"`
	Program  string `mapstructure:"PROMO"`

	// Week selection, in priority order. Only the first one set is used.
	TargetWeek  string `mapstructure:"TARGET_WEEK"`
	TargetDate  string `mapstructure:"TARGET_DATE"`
	WeeksOffset string `mapstructure:"WEEKS_OFFSET"`

	SaveFolder    string `mapstructure:"SAVE_FOLDER"`
	Message       string `mapstructure:"PDF_MESSAGE"`
	SignatureFile string `mapstructure:"SIGNATURE_FILE"`

	Debug    bool   `mapstructure:"DEBUG_MODE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	LookupTimeoutSeconds int `mapstructure:"LOOKUP_TIMEOUT_SECONDS"`
}

// LookupTimeout is the bound applied to each element lookup in the portal.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutSeconds) * time.Second
}

// Load reads configuration from a .env file and the environment.
// A missing .env file is not an error; supervised runs are configured
// purely through environment variables handed down by the GUI.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("SAVE_FOLDER", "pdfs")
	v.SetDefault("PDF_MESSAGE", "Emploi du temps généré automatiquement")
	v.SetDefault("SIGNATURE_FILE", "signature.png")
	v.SetDefault("DEBUG_MODE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOOKUP_TIMEOUT_SECONDS", 60)

	// viper only binds environment variables it has seen; declare the
	// ones that have no default.
	for _, key := range []string{
		"IMT_USERNAME", "IMT_PASSWORD", "NOM_PRENOM", "PROMO",
		"TARGET_WEEK", "TARGET_DATE", "WEEKS_OFFSET",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
