// Package models defines data structures for the BSR tracker.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TimestampLayout is the capture-time format used in exports.
const TimestampLayout = "2006-01-02 15:04:05"

// Record status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RankingEntry is a single "#rank in category" entry from a product page.
type RankingEntry struct {
	Rank          int    `json:"rank"`
	RankFormatted string `json:"rank_formatted"`
	Category      string `json:"category"`
}

// String renders the entry the way Amazon displays it.
func (e RankingEntry) String() string {
	return fmt.Sprintf("#%s in %s", e.RankFormatted, e.Category)
}

// ProductRecord is the outcome of processing one product URL. Records are
// built through NewSuccessRecord or NewErrorRecord and not mutated afterwards.
type ProductRecord struct {
	URL                  string         `json:"url"`
	ASIN                 string         `json:"asin"`
	Title                string         `json:"title"`
	PrimaryRank          *int           `json:"primary_rank"`
	PrimaryRankFormatted string         `json:"primary_rank_formatted"`
	PrimaryCategory      string         `json:"primary_category"`
	AllRankings          []RankingEntry `json:"all_rankings"`
	Timestamp            string         `json:"timestamp"`
	Status               string         `json:"status"`
	Error                string         `json:"error,omitempty"`
}

// NewSuccessRecord builds a record for a fetched and parsed product page.
// The first ranking entry, when present, becomes the primary rank.
func NewSuccessRecord(url, asin, title string, rankings []RankingEntry) *ProductRecord {
	rec := &ProductRecord{
		URL:                  url,
		ASIN:                 asin,
		Title:                title,
		PrimaryRankFormatted: "Not found",
		PrimaryCategory:      "N/A",
		AllRankings:          rankings,
		Timestamp:            time.Now().Format(TimestampLayout),
		Status:               StatusSuccess,
	}
	if rec.AllRankings == nil {
		rec.AllRankings = []RankingEntry{}
	}
	if len(rankings) > 0 {
		rank := rankings[0].Rank
		rec.PrimaryRank = &rank
		rec.PrimaryRankFormatted = rankings[0].RankFormatted
		rec.PrimaryCategory = rankings[0].Category
	}
	return rec
}

// NewErrorRecord builds a record for a URL whose fetch or parse failed.
// All ranking fields hold placeholders and Error carries the cause.
func NewErrorRecord(url string, err error) *ProductRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &ProductRecord{
		URL:                  url,
		ASIN:                 "N/A",
		Title:                "Error",
		PrimaryRankFormatted: "Error",
		PrimaryCategory:      "N/A",
		AllRankings:          []RankingEntry{},
		Timestamp:            time.Now().Format(TimestampLayout),
		Status:               StatusError,
		Error:                msg,
	}
}

// AllRankingsJoined renders every ranking entry as a single
// semicolon-separated string for tabular output.
func (r *ProductRecord) AllRankingsJoined() string {
	parts := make([]string, 0, len(r.AllRankings))
	for _, entry := range r.AllRankings {
		parts = append(parts, entry.String())
	}
	return strings.Join(parts, "; ")
}

// BatchResult holds the overall outcome of one run.
type BatchResult struct {
	Records      []*ProductRecord
	StartTime    time.Time
	EndTime      time.Time
	SuccessCount int
	ErrorCount   int
	ErrorsByType map[string]int
}

// Summary aggregates a result sequence for console display. Rank statistics
// are only meaningful when HasRankStats is true.
type Summary struct {
	Total        int
	Successful   int
	Failed       int
	AverageRank  int
	BestRank     int
	WorstRank    int
	HasRankStats bool
}

// Summarize computes counts and rank statistics over records. The statistics
// cover successful records with a known primary rank; if there are none,
// HasRankStats is false.
func Summarize(records []*ProductRecord) Summary {
	s := Summary{Total: len(records)}

	sum := 0
	ranked := 0
	for _, rec := range records {
		if rec.Status != StatusSuccess {
			continue
		}
		s.Successful++
		if rec.PrimaryRank == nil {
			continue
		}
		rank := *rec.PrimaryRank
		sum += rank
		ranked++
		if !s.HasRankStats {
			s.BestRank = rank
			s.WorstRank = rank
			s.HasRankStats = true
			continue
		}
		if rank < s.BestRank {
			s.BestRank = rank
		}
		if rank > s.WorstRank {
			s.WorstRank = rank
		}
	}
	s.Failed = s.Total - s.Successful

	if ranked > 0 {
		s.AverageRank = int(math.Round(float64(sum) / float64(ranked)))
	}
	return s
}
