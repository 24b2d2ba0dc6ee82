package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/config"
)

func newTestCommand() *cobra.Command {
	configFile, preset = "", ""
	physParams = nil
	cmd := &cobra.Command{Use: "test"}
	addConfigFlags(cmd)
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cmd := newTestCommand()
	cfg, err := resolveConfig(cmd, "cloth")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "cloth" || cfg.Size != config.DefaultSize || cfg.Integrator != config.DefaultIntegrator {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestResolveConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	file := config.GetPreset("cloth", "small")
	file.Steps = 77
	file.Dt = 0.002
	if err := config.Save(path, file); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand()
	for name, value := range map[string]string{
		"preset": "sheet",
		"config": path,
		"dt":     "0.004",
		"param":  "gravity=0.5",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := resolveConfig(cmd, "cloth")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Steps != 77 {
		t.Errorf("config file should override the preset, steps=%d", cfg.Steps)
	}
	if cfg.Dt != 0.004 {
		t.Errorf("explicit flag should override the file, dt=%g", cfg.Dt)
	}
	if cfg.Physics["gravity"] != 0.5 {
		t.Errorf("expected gravity override, got %v", cfg.Physics)
	}
}

func TestResolveConfigPartialFileKeepsPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("steps: 77\nphysics:\n  drag: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand()
	if err := cmd.Flags().Set("preset", "stiff"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	cfg, err := resolveConfig(cmd, "cloth")
	if err != nil {
		t.Fatal(err)
	}

	stiff := config.GetPreset("cloth", "stiff")
	if cfg.Steps != 77 {
		t.Errorf("file steps not applied, steps=%d", cfg.Steps)
	}
	if cfg.Size != stiff.Size || cfg.Integrator != stiff.Integrator || cfg.Dt != stiff.Dt {
		t.Errorf("preset fields the file omits were lost: %+v", cfg)
	}
	if cfg.Physics["structural"] != 20 || cfg.Physics["drag"] != 0.5 {
		t.Errorf("expected preset and file physics merged, got %v", cfg.Physics)
	}
}

func TestResolveConfigSheetKeepsJitter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("dt: 0.004\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand()
	for name, value := range map[string]string{"preset": "sheet", "config": path} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}
	cfg, err := resolveConfig(cmd, "cloth")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jitter != 0.05 || cfg.Seed != 7 || cfg.Dt != 0.004 {
		t.Errorf("expected sheet jitter and seed under the file dt, got %+v", cfg)
	}
}

func TestResolveConfigFileModelMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pendulum.yaml")
	if err := os.WriteFile(path, []byte("model: pendulum\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cmd := newTestCommand()
	if err := cmd.Flags().Set("config", path); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd, "cloth"); err == nil {
		t.Error("expected a model mismatch error")
	}
}

func TestResolveConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		model string
		flags map[string]string
	}{
		{"unknown preset", "cloth", map[string]string{"preset": "huge"}},
		{"unknown model", "rope", nil},
		{"bad param", "pendulum", map[string]string{"param": "gravity=heavy"}},
		{"bad dt", "pendulum", map[string]string{"dt": "-1"}},
		{"missing file", "pendulum", map[string]string{"config": "/nonexistent/run.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTestCommand()
			for k, v := range tt.flags {
				if err := cmd.Flags().Set(k, v); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := resolveConfig(cmd, tt.model); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
