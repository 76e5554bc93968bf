package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MovieSource string

const (
	SourceOmdb MovieSource = "omdb"
	SourceTmdb MovieSource = "tmdb"
)

type CachedMovie struct {
	Id             primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title          string             `bson:"title" json:"title"`
	ExternalId     string             `bson:"externalId" json:"externalId"`
	Source         MovieSource        `bson:"source" json:"source"`
	ReleaseDate    time.Time          `bson:"releaseDate" json:"releaseDate"`
	PosterUrl      string             `bson:"posterUrl" json:"posterUrl"`
	CacheTimestamp time.Time          `bson:"cacheTimestamp" json:"cacheTimestamp"`
}

// MovieCandidate is the common shape every upstream listing is normalized into.
// ReleaseDate is zero until the detail fetch fills it.
type MovieCandidate struct {
	Title       string      `json:"title"`
	ExternalId  string      `json:"externalId"`
	ReleaseDate time.Time   `json:"releaseDate"`
	PosterUrl   string      `json:"posterUrl"`
	Source      MovieSource `json:"source"`
}

type MovieSummary struct {
	Title      string      `json:"title"`
	ExternalId string      `json:"externalId"`
	Year       string      `json:"year"`
	Type       string      `json:"type"`
	PosterUrl  string      `json:"posterUrl"`
	Source     MovieSource `json:"source"`
}

type MovieRating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// MovieDetail keeps the omdb field names, the frontend renders them as they come.
type MovieDetail struct {
	Title      string        `json:"Title"`
	Year       string        `json:"Year"`
	Rated      string        `json:"Rated"`
	Released   string        `json:"Released"`
	Runtime    string        `json:"Runtime"`
	Genre      string        `json:"Genre"`
	Director   string        `json:"Director"`
	Writer     string        `json:"Writer"`
	Actors     string        `json:"Actors"`
	Plot       string        `json:"Plot"`
	Language   string        `json:"Language"`
	Country    string        `json:"Country"`
	Awards     string        `json:"Awards"`
	Poster     string        `json:"Poster"`
	Ratings    []MovieRating `json:"Ratings"`
	Metascore  string        `json:"Metascore"`
	ImdbRating string        `json:"imdbRating"`
	ImdbVotes  string        `json:"imdbVotes"`
	ImdbID     string        `json:"imdbID"`
	Type       string        `json:"Type"`
	DVD        string        `json:"DVD"`
	BoxOffice  string        `json:"BoxOffice"`
	Production string        `json:"Production"`
	Website    string        `json:"Website"`

	TmdbId      int64   `json:"tmdbId,omitempty"`
	Overview    string  `json:"overview,omitempty"`
	BackdropUrl string  `json:"backdropUrl,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
	VoteCount   int     `json:"voteCount,omitempty"`
}
