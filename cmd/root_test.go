package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/store"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	c.Flags().String("db", "", "")
	c.Flags().String("db-driver", "", "")
	c.Flags().String("catalog", "", "")
	c.Flags().String("addr", "", "")
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return c
}

func TestResolveDB(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("TUTOR_DB", "")
	t.Setenv("TUTOR_DB_DRIVER", "")

	tests := []struct {
		name       string
		args       []string
		env        map[string]string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{
			name:       "default path",
			wantDriver: store.DriverSQLite,
			wantDSN:    filepath.Join(dir, "algotutor", "algotutor.db"),
		},
		{
			name:       "flag wins",
			args:       []string{"--db", filepath.Join(dir, "x", "flag.db")},
			env:        map[string]string{"TUTOR_DB": filepath.Join(dir, "env.db")},
			wantDriver: store.DriverSQLite,
			wantDSN:    filepath.Join(dir, "x", "flag.db"),
		},
		{
			name:       "postgres from env",
			env:        map[string]string{"TUTOR_DB_DRIVER": "postgres", "TUTOR_DB": "postgres://localhost/tutor"},
			wantDriver: store.DriverPostgres,
			wantDSN:    "postgres://localhost/tutor",
		},
		{
			name:    "postgres without dsn",
			args:    []string{"--db-driver", "postgres"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			driver, dsn, err := resolveDB(newFlagCmd(t, tt.args...))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveDB: %v", err)
			}
			if driver != tt.wantDriver || dsn != tt.wantDSN {
				t.Errorf("resolveDB() = (%q, %q), want (%q, %q)", driver, dsn, tt.wantDriver, tt.wantDSN)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Setenv("TUTOR_CATALOG", "")
	g, err := loadCatalog(newFlagCmd(t))
	if err != nil {
		t.Fatalf("embedded catalog: %v", err)
	}
	if g.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}

	if _, err := loadCatalog(newFlagCmd(t, "--catalog", filepath.Join(t.TempDir(), "missing.json"))); err == nil {
		t.Fatal("expected an error for a missing catalog file")
	}
}

func TestServerConfigOverrides(t *testing.T) {
	for _, k := range []string{"TUTOR_ADDR", "PORT", "TUTOR_LLM_PROVIDER", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY", "TUTOR_DB_DRIVER"} {
		t.Setenv(k, "")
	}
	t.Setenv("TUTOR_DB", filepath.Join(t.TempDir(), "env.db"))
	flagDB := filepath.Join(t.TempDir(), "flag.db")

	cfg, err := serverConfig(newFlagCmd(t, "--addr", ":9999", "--db", flagDB))
	if err != nil {
		t.Fatalf("serverConfig: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Addr)
	}
	if cfg.DB != flagDB {
		t.Errorf("DB = %q, want %q", cfg.DB, flagDB)
	}
}

func TestPreviewConfig(t *testing.T) {
	for _, k := range []string{"TUTOR_ADDR", "PORT", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"GEMINI_API_KEY", "OPENROUTER_API_KEY", "TUTOR_DB_DRIVER", "TUTOR_RATE_LIMIT_MAX", "TUTOR_RATE_LIMIT_WINDOW", "TUTOR_LOG_MODE", "TUTOR_MODE_POLICY"} {
		t.Setenv(k, "")
	}
	t.Setenv("TUTOR_DB", filepath.Join(t.TempDir(), "preview.db"))

	t.Setenv("TUTOR_LLM_PROVIDER", "none")
	if _, err := previewConfig(); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}

	t.Setenv("TUTOR_LLM_PROVIDER", "mock")
	t.Setenv("TUTOR_INSTRUCTION_LANGUAGE", "English")
	cfg, err := previewConfig()
	if err != nil {
		t.Fatalf("previewConfig: %v", err)
	}
	if cfg.InstructionLanguage != "English" {
		t.Errorf("InstructionLanguage = %q, want English", cfg.InstructionLanguage)
	}
	if cfg.LLM.Provider != llm.ProviderMock {
		t.Errorf("Provider = %q, want mock", cfg.LLM.Provider)
	}
}
