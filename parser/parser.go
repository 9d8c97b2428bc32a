// Package parser extracts Best Sellers Rank data from Amazon product pages.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-amazon-bsr/models"
)

// TitleNotFound is the sentinel title for pages without a #productTitle span.
const TitleNotFound = "Title not found"

var (
	asinPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

	// Matches "#1,234 in Some Category" and "#1,234 in Some Category (See Top 100)".
	// The category is the shortest run of non-parenthesis text up to an opening
	// parenthesis or end of input.
	rankingPattern = regexp.MustCompile(`#([\d,]+)\s+in\s+([^(]+?)(?:\s*\(|$)`)

	bestSellersPattern = regexp.MustCompile(`(?i)Best Sellers Rank`)
)

// Extraction is the parsed outcome for one product page.
type Extraction struct {
	ASIN     string
	Title    string
	Rankings []models.RankingEntry
}

// strategy locates ranking entries in one known page layout. Strategies are
// pure over the document and return nil when the layout does not apply.
type strategy func(*goquery.Document) []models.RankingEntry

// Layout fallbacks in priority order; the first non-empty result wins.
var strategies = []strategy{
	rankingsFromDetailsTable,
	rankingsFromDetailBullets,
	rankingsFromDetailSection,
}

// ExtractProduct parses page markup and pulls the ASIN, title, and every
// ranking entry found by the first matching layout strategy. Absence of
// ranking data is not an error; it yields an empty entry list.
func ExtractProduct(pageHTML []byte, url string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	ex := &Extraction{
		ASIN:  ExtractASIN(url),
		Title: extractTitle(doc),
	}
	for _, s := range strategies {
		if entries := s(doc); len(entries) > 0 {
			ex.Rankings = entries
			break
		}
	}
	return ex, nil
}

// ExtractASIN pulls the 10-character product identifier following a /dp/
// path segment, or "N/A" when the URL has none.
func ExtractASIN(url string) string {
	match := asinPattern.FindStringSubmatch(url)
	if match == nil {
		return "N/A"
	}
	return match[1]
}

func extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("#productTitle").First().Text())
	if title == "" {
		return TitleNotFound
	}
	return title
}

// rankingsFromDetailsTable handles the classic product details table: a th
// labelled "Best Sellers Rank" followed by a td holding the rank text.
func rankingsFromDetailsTable(doc *goquery.Document) []models.RankingEntry {
	var entries []models.RankingEntry
	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if !bestSellersPattern.MatchString(th.Text()) {
			return true
		}
		td := th.NextAllFiltered("td").First()
		if td.Length() == 0 {
			return true
		}
		entries = ParseRankings(td.Text())
		return len(entries) == 0
	})
	return entries
}

// rankingsFromDetailBullets handles the detail bullets wrapper: a list item
// labelled "Best Sellers Rank", or failing that a labelled span whose
// enclosing list item carries the rank text.
func rankingsFromDetailBullets(doc *goquery.Document) []models.RankingEntry {
	wrapper := doc.Find("#detailBulletsWrapper_feature_div")
	if wrapper.Length() == 0 {
		return nil
	}

	// Plain-text list items first; items wrapping the label in spans are
	// handled by the span fallback below.
	var entries []models.RankingEntry
	wrapper.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if li.Children().Length() > 0 || !bestSellersPattern.MatchString(li.Text()) {
			return true
		}
		entries = ParseRankings(li.Text())
		return len(entries) == 0
	})
	if len(entries) > 0 {
		return entries
	}

	wrapper.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if !bestSellersPattern.MatchString(span.Text()) {
			return true
		}
		parent := span.Closest("li")
		if parent.Length() == 0 {
			parent = span.Parent()
		}
		entries = ParseRankings(parent.Text())
		return len(entries) == 0
	})
	return entries
}

// rankingsFromDetailSection handles the newer flat layout: the whole
// detail bullets container is scanned when it mentions Best Sellers Rank.
func rankingsFromDetailSection(doc *goquery.Document) []models.RankingEntry {
	section := doc.Find("#detailBullets_feature_div")
	if section.Length() == 0 {
		return nil
	}
	text := section.Text()
	if !bestSellersPattern.MatchString(text) {
		return nil
	}
	return ParseRankings(text)
}

// ParseRankings extracts every "#rank in category" occurrence from text in
// document order. Rank text that does not reduce to a positive integer is
// skipped rather than producing a corrupt entry.
func ParseRankings(text string) []models.RankingEntry {
	var entries []models.RankingEntry
	for _, match := range rankingPattern.FindAllStringSubmatch(text, -1) {
		rank, err := strconv.Atoi(strings.ReplaceAll(match[1], ",", ""))
		if err != nil || rank <= 0 {
			continue
		}
		entries = append(entries, models.RankingEntry{
			Rank:          rank,
			RankFormatted: match[1],
			Category:      strings.TrimSpace(match[2]),
		})
	}
	return entries
}
