package mindvault

import "time"

// Item is a saved item.
type Item struct {
	ID           string
	Title        string
	URL          string
	FileURL      string
	ImageURL     string
	Type         string
	Reason       string
	TopicAuto    string
	TopicUser    []string
	Category     string
	Keywords     []string
	Summary      string
	Platform     string
	Price        *float64
	SelectedText string
	Description  string
	CreatedAt    time.Time
}

// SaveRequest describes a new item. Only Title is required; the classifier
// fills type, reason, topic, keywords and platform when they are left empty.
type SaveRequest struct {
	Title        string
	URL          string
	FileURL      string
	ImageURL     string
	Type         string
	Reason       string
	TopicAuto    string
	TopicUser    []string
	Price        *float64
	SelectedText string
	Description  string
	// PageText is extra page context for classification; it is not stored.
	PageText string
}

// SearchRequest is a query plus optional manual filters. Empty fields are unset.
type SearchRequest struct {
	Query     string
	Limit     int
	SortBy    string // relevance, title or date
	Type      string
	Reason    string
	TopicUser string
	TopicAuto string
	Category  string
	DateRange string // today, week, month, year or all
	From      string // YYYY-MM-DD
	To        string // YYYY-MM-DD
}

// SearchResult is an item with its relevance in [0,1].
type SearchResult struct {
	Item
	Similarity float64
}

// SearchResponse is the outcome of a search.
type SearchResponse struct {
	Query string
	// Mode names the retrieval branch: semantic, filter, lexical or recent.
	Mode string
	// DetectedFilters describes every applied filter, e.g. "Price: ₹0-3000".
	DetectedFilters []string
	Results         []SearchResult
}
