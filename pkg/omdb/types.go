// Package omdb provides a client for the OMDb movie metadata API.
package omdb

import (
	"strings"
	"time"
)

const notAvailable = "N/A"

// releasedLayout is the format of the Released field, e.g. "02 Feb 2024".
const releasedLayout = "02 Jan 2006"

type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type SearchResult struct {
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}

type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

type Movie struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"`
	Runtime    string   `json:"Runtime"`
	Genre      string   `json:"Genre"`
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	ImdbRating string   `json:"imdbRating"`
	ImdbVotes  string   `json:"imdbVotes"`
	ImdbID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	DVD        string   `json:"DVD"`
	BoxOffice  string   `json:"BoxOffice"`
	Production string   `json:"Production"`
	Website    string   `json:"Website"`
	Response   string   `json:"Response"`
	Error      string   `json:"Error"`
}

// ReleaseDate parses Released. ok is false for "N/A" or an unknown layout.
func (m *Movie) ReleaseDate() (time.Time, bool) {
	if m.Released == "" || m.Released == notAvailable {
		return time.Time{}, false
	}
	t, err := time.Parse(releasedLayout, m.Released)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PosterURL returns the poster or "" when omdb has none.
func PosterURL(poster string) string {
	if poster == notAvailable {
		return ""
	}
	return strings.TrimSpace(poster)
}
