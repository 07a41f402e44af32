package supervisor

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

// Settings are the values the interface layer collects and hands down to
// the pipeline as environment variables. They are persisted locally so the
// operator does not re-enter them on every run.
type Settings struct {
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	FullName      string `mapstructure:"full_name"`
	Program       string `mapstructure:"program"`
	TargetWeek    string `mapstructure:"target_week"`
	Message       string `mapstructure:"message"`
	SignatureFile string `mapstructure:"signature_file"`
}

// LoadSettings reads the settings file. A missing file is not an error;
// the zero settings are returned and the form starts empty.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &pathErr) || errors.As(err, &notFound) {
			return &Settings{}, nil
		}
		return nil, err
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save persists the settings.
func (s *Settings) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("username", s.Username)
	v.Set("password", s.Password)
	v.Set("full_name", s.FullName)
	v.Set("program", s.Program)
	v.Set("target_week", s.TargetWeek)
	v.Set("message", s.Message)
	v.Set("signature_file", s.SignatureFile)
	return v.WriteConfigAs(path)
}

// Env maps the settings onto the pipeline's environment contract.
func (s *Settings) Env() map[string]string {
	return map[string]string{
		"IMT_USERNAME":   s.Username,
		"IMT_PASSWORD":   s.Password,
		"NOM_PRENOM":     s.FullName,
		"PROMO":          s.Program,
		"TARGET_WEEK":    s.TargetWeek,
		"PDF_MESSAGE":    s.Message,
		"SIGNATURE_FILE": s.SignatureFile,
	}
}
