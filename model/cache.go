package model

type CachedMovieDetail struct {
	MovieId  string       `json:"movieId"`
	Detail   *MovieDetail `json:"detail"`
	CachedAt int64        `json:"cachedAt"`
}
