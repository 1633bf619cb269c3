package api

import (
	"testing"

	"GridPull/internal/domain/models"
)

func TestParseFeatureSpec(t *testing.T) {
	tests := []struct {
		name     string
		features string
		wantLen  int
		wantErr  bool
	}{
		{"default when empty", "", 1, false},
		{"single with weight", "da.lmp_total:2", 1, false},
		{"multi market", "da.lmp_total:1,rt.lmp_total:0.5,dart.lmp_congestion_price:0.25", 3, false},
		{"weight defaults to one", "rt.lmp_total", 1, false},
		{"missing component", "da:1", 0, true},
		{"bad weight", "da.lmp_total:heavy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := parseFeatureSpec(tt.features, "", "", "")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(spec.Features) != tt.wantLen {
				t.Errorf("features = %d, want %d", len(spec.Features), tt.wantLen)
			}
		})
	}
}

func TestParseFeatureSpecDefaults(t *testing.T) {
	spec, err := parseFeatureSpec("", "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := spec.Features[0]
	if f.Market != models.MarketDayAhead || f.Component != models.ComponentTotal || f.Weight != 1.0 {
		t.Errorf("default feature = %+v, want da.lmp_total:1", f)
	}
}

func TestParseFeatureSpecCalendarLists(t *testing.T) {
	spec, err := parseFeatureSpec("da.lmp_total", "7,8,9", "1,2,3,4,5", "6,7,8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spec.Hours) != 3 || spec.Hours[0] != 7 {
		t.Errorf("hours = %v", spec.Hours)
	}
	if len(spec.DaysOfWeek) != 5 {
		t.Errorf("days_of_week = %v", spec.DaysOfWeek)
	}
	if len(spec.Months) != 3 {
		t.Errorf("months = %v", spec.Months)
	}

	if _, err := parseFeatureSpec("da.lmp_total", "7,x", "", ""); err == nil {
		t.Error("bad hours list must error")
	}
}
