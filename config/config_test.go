package config

import (
	"errors"
	"testing"

	"github.com/Temutjin2k/campus-ride/internal/domain/types"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mode    types.ServiceMode
		storage types.StorageDriver
		wantErr error
	}{
		{"matching on postgres", types.MatchingService, types.StoragePostgres, nil},
		{"matching in memory", types.MatchingService, types.StorageMemory, nil},
		{"ingest on postgres", types.LocationIngestService, types.StoragePostgres, nil},
		{"ingest in memory", types.LocationIngestService, types.StorageMemory, ErrInvalidStorage},
		{"unknown mode", types.ServiceMode("ride"), types.StoragePostgres, ErrInvalidMode},
		{"unknown storage", types.MatchingService, types.StorageDriver("sqlite"), ErrInvalidStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode, Storage: StorageConfig{Driver: tt.storage}}
			err := cfg.validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"abc":            "****",
		"supersecretkey": "su****",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPort(t *testing.T) {
	cfg := Config{Services: ServicesConfig{Matching: "3000", LocationIngest: "3001"}}

	cfg.Mode = types.MatchingService
	if got := cfg.Port(); got != "3000" {
		t.Fatalf("matching port = %s", got)
	}
	cfg.Mode = types.LocationIngestService
	if got := cfg.Port(); got != "3001" {
		t.Fatalf("ingest port = %s", got)
	}
}
