package settings

import (
	"context"
	"testing"

	"netmeter/internal/model"
)

func TestLoadReturnsDefaultsForFreshDatabase(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != model.DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestSaveThenLoadPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	want := model.Settings{
		SelectedAdapter:   "wlan0",
		AutoSelectAdapter: false,
		HasPosition:       true,
		PositionX:         -40,
		PositionY:         812,
		FixedPosition:     true,
		FontFamily:        "Consolas",
		FontSize:          18,
		TextColor:         "#FFA500",
	}
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	want.PositionX = -41
	if err := s.Save(context.Background(), want); err != nil {
		t.Fatalf("second Save returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected settings after reopen: got %+v want %+v", got, want)
	}
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()

	if _, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES ('text_size', 'huge'), ('fix_position', 'maybe')`); err != nil {
		t.Fatalf("seed returned error: %v", err)
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.FontSize != model.DefaultFontSize || got.FixedPosition {
		t.Fatalf("expected fallbacks for malformed values, got %+v", got)
	}
}
