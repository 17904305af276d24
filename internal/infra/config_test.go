package infra

import (
	"testing"
	"time"
)

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ModelCooldown != 60*time.Second {
		t.Fatalf("ModelCooldown = %v, want 60s", cfg.ModelCooldown)
	}
	if len(cfg.ImageModels) == 0 || cfg.ImageModels[0] != "gemini-2.5-flash-image" {
		t.Fatalf("ImageModels = %v", cfg.ImageModels)
	}
}

func TestLoadConfigListOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/console")
	t.Setenv("VIDEO_MODELS", " veo-3 , veo-2 ,")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if len(cfg.VideoModels) != 2 || cfg.VideoModels[0] != "veo-3" || cfg.VideoModels[1] != "veo-2" {
		t.Fatalf("VideoModels = %v", cfg.VideoModels)
	}
	if got := cfg.ModelsFor("video"); len(got) != 2 {
		t.Fatalf("ModelsFor(video) = %v", got)
	}
}
