package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewSuccessRecordPrimaryMirrorsFirstRanking(t *testing.T) {
	rankings := []RankingEntry{
		{Rank: 1234, RankFormatted: "1,234", Category: "Electronics"},
		{Rank: 56, RankFormatted: "56", Category: "Headphones"},
	}

	rec := NewSuccessRecord("https://www.amazon.com/dp/B08N5WRWNW", "B08N5WRWNW", "Echo Dot", rankings)

	if rec.Status != StatusSuccess {
		t.Fatalf("status = %q, want %q", rec.Status, StatusSuccess)
	}
	if rec.PrimaryRank == nil || *rec.PrimaryRank != 1234 {
		t.Fatalf("primary rank = %v, want 1234", rec.PrimaryRank)
	}
	if rec.PrimaryRankFormatted != "1,234" {
		t.Fatalf("primary rank formatted = %q, want %q", rec.PrimaryRankFormatted, "1,234")
	}
	if rec.PrimaryCategory != "Electronics" {
		t.Fatalf("primary category = %q, want %q", rec.PrimaryCategory, "Electronics")
	}
	if rec.Timestamp == "" {
		t.Fatalf("timestamp should be set")
	}
}

func TestNewSuccessRecordWithoutRankings(t *testing.T) {
	rec := NewSuccessRecord("https://www.amazon.com/dp/B08N5WRWNW", "B08N5WRWNW", "Echo Dot", nil)

	if rec.PrimaryRank != nil {
		t.Fatalf("primary rank = %v, want nil", rec.PrimaryRank)
	}
	if rec.PrimaryRankFormatted != "Not found" {
		t.Fatalf("primary rank formatted = %q, want %q", rec.PrimaryRankFormatted, "Not found")
	}
	if rec.PrimaryCategory != "N/A" {
		t.Fatalf("primary category = %q, want %q", rec.PrimaryCategory, "N/A")
	}
	if rec.AllRankings == nil || len(rec.AllRankings) != 0 {
		t.Fatalf("all rankings = %v, want empty slice", rec.AllRankings)
	}
}

func TestNewErrorRecordPlaceholders(t *testing.T) {
	rec := NewErrorRecord("https://www.amazon.com/dp/B08N5WRWNW", errors.New("timeout: deadline exceeded"))

	if rec.Status != StatusError {
		t.Fatalf("status = %q, want %q", rec.Status, StatusError)
	}
	if rec.ASIN != "N/A" || rec.Title != "Error" {
		t.Fatalf("placeholders wrong: asin=%q title=%q", rec.ASIN, rec.Title)
	}
	if rec.PrimaryRank != nil {
		t.Fatalf("primary rank = %v, want nil", rec.PrimaryRank)
	}
	if rec.Error != "timeout: deadline exceeded" {
		t.Fatalf("error = %q", rec.Error)
	}
	if len(rec.AllRankings) != 0 {
		t.Fatalf("all rankings should be empty, got %v", rec.AllRankings)
	}
}

func TestAllRankingsJoined(t *testing.T) {
	rec := NewSuccessRecord("u", "A", "t", []RankingEntry{
		{Rank: 1234, RankFormatted: "1,234", Category: "Electronics"},
		{Rank: 56, RankFormatted: "56", Category: "Headphones"},
	})

	want := "#1,234 in Electronics; #56 in Headphones"
	if got := rec.AllRankingsJoined(); got != want {
		t.Fatalf("joined = %q, want %q", got, want)
	}
}

func TestNullPrimaryRankRoundTrips(t *testing.T) {
	rec := NewSuccessRecord("u", "A", "t", nil)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ProductRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.PrimaryRank != nil {
		t.Fatalf("round-tripped primary rank = %v, want nil", decoded.PrimaryRank)
	}
	if decoded.PrimaryRankFormatted != "Not found" {
		t.Fatalf("round-tripped formatted rank = %q", decoded.PrimaryRankFormatted)
	}
}

func TestSummarize(t *testing.T) {
	rank := func(n int) *int { return &n }

	tests := []struct {
		name    string
		records []*ProductRecord
		want    Summary
	}{
		{
			name:    "empty",
			records: nil,
			want:    Summary{},
		},
		{
			name: "mixed outcomes",
			records: []*ProductRecord{
				{Status: StatusSuccess, PrimaryRank: rank(100)},
				{Status: StatusSuccess, PrimaryRank: rank(300)},
				{Status: StatusSuccess},
				{Status: StatusError},
			},
			want: Summary{
				Total:        4,
				Successful:   3,
				Failed:       1,
				AverageRank:  200,
				BestRank:     100,
				WorstRank:    300,
				HasRankStats: true,
			},
		},
		{
			name: "no ranked successes omits statistics",
			records: []*ProductRecord{
				{Status: StatusSuccess},
				{Status: StatusError},
			},
			want: Summary{Total: 2, Successful: 1, Failed: 1},
		},
		{
			name: "average rounds to nearest integer",
			records: []*ProductRecord{
				{Status: StatusSuccess, PrimaryRank: rank(1)},
				{Status: StatusSuccess, PrimaryRank: rank(2)},
			},
			want: Summary{
				Total:        2,
				Successful:   2,
				AverageRank:  2,
				BestRank:     1,
				WorstRank:    2,
				HasRankStats: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.records); got != tt.want {
				t.Fatalf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
