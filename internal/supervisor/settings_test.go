package supervisor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	in := &Settings{
		Username:      "roman",
		Password:      "secret",
		FullName:      "GUERRY Roman",
		Program:       "FIPA3R",
		TargetWeek:    "38",
		Message:       "Emploi du temps généré automatiquement",
		SignatureFile: "signature.png",
	}
	require.NoError(t, in.Save(path))

	out, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Settings{}, s)
}

func TestSettings_Env(t *testing.T) {
	s := &Settings{Username: "u", Password: "p", FullName: "n", Program: "g"}
	env := s.Env()
	assert.Equal(t, "u", env["IMT_USERNAME"])
	assert.Equal(t, "p", env["IMT_PASSWORD"])
	assert.Equal(t, "n", env["NOM_PRENOM"])
	assert.Equal(t, "g", env["PROMO"])
	// Unset selections stay empty so the pipeline's own defaults apply.
	assert.Equal(t, "", env["TARGET_WEEK"])
}
