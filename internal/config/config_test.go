package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MaxColors != 256 {
		t.Errorf("MaxColors = %d, want 256", cfg.MaxColors)
	}
	if cfg.ResizeFloodThreshold != 128 {
		t.Errorf("ResizeFloodThreshold = %d, want 128", cfg.ResizeFloodThreshold)
	}
	if cfg.BorderStyle != BorderStyleLine {
		t.Errorf("BorderStyle = %v, want BorderStyleLine", cfg.BorderStyle)
	}
}
