package util

import (
	"reflect"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2026-02-23")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Format(DateLayout) != "2026-02-23" {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateRejectsTimestamps(t *testing.T) {
	if _, ok := ParseDate("2026-02-23T10:00:00Z"); ok {
		t.Fatalf("expected timestamp to be rejected")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected empty string to be rejected")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	if got := ParseDateDefault("", def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
	if got := ParseDateDefault("not-a-date", def); !got.Equal(def) {
		t.Fatalf("expected default on invalid input")
	}
}

func TestParseIntList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"1,2,3", []int{1, 2, 3}, false},
		{" 7 , 8 ", []int{7, 8}, false},
		{"1,x", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseIntList(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseIntList(%q) err = %v", tt.in, err)
			continue
		}
		if err == nil && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseIntList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
