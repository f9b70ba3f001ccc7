package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcloro/escrow-program/internal/domain/account"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.DB.DSN)
	assert.Equal(t, time.Minute, cfg.Worker.Interval)
	assert.Equal(t, account.DefaultRent, cfg.RentParams())
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)

	id, err := cfg.ProgramID()
	require.NoError(t, err)
	assert.Equal(t, account.DefaultEscrowProgramID, id)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=5000\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)

	programID := account.DerivePubkey([]byte("custom")).String()
	t.Setenv("ESCROW_PROGRAM_PORT", "6000")
	t.Setenv("ESCROW_PROGRAM_LOG_LEVEL", "debug")
	t.Setenv("ESCROW_PROGRAM_WORKER_INTERVAL", "30s")
	t.Setenv("ESCROW_PROGRAM_RENT_EXEMPTION_THRESHOLD", "1.5")
	t.Setenv("ESCROW_PROGRAM_PROGRAM_ID", programID)

	cfg, err = LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Worker.Interval)
	assert.Equal(t, 1.5, cfg.Rent.ExemptionThreshold)

	id, err := cfg.ProgramID()
	require.NoError(t, err)
	assert.Equal(t, programID, id.String())
}

func TestLoadRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"ESCROW_PROGRAM_PORT": "70000"}},
		{"unknown log level", map[string]string{"ESCROW_PROGRAM_LOG_LEVEL": "loud"}},
		{"short program id", map[string]string{"ESCROW_PROGRAM_PROGRAM_ID": "abcd"}},
		{"0x prefixed program id", map[string]string{"ESCROW_PROGRAM_PROGRAM_ID": "0x" + strings.Repeat("ab", 31)}},
		{"0X prefixed program id", map[string]string{"ESCROW_PROGRAM_PROGRAM_ID": "0X" + strings.Repeat("ab", 31)}},
		{"zero threshold", map[string]string{"ESCROW_PROGRAM_RENT_EXEMPTION_THRESHOLD": "0"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestProgramIDAcceptedByValidationParses(t *testing.T) {
	for _, id := range []string{strings.Repeat("ab", 32), strings.Repeat("AB", 32)} {
		t.Setenv("ESCROW_PROGRAM_PROGRAM_ID", id)
		cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)

		pk, err := cfg.ProgramID()
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(id), pk.String())
	}
}
