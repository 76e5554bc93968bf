package service

import (
	"context"
	"errors"
	"fmt"
	"movie_browser/configs"
	"movie_browser/internal/repository"
	"movie_browser/model"
	errorHandler "movie_browser/pkg/error"
	"movie_browser/pkg/omdb"
	"movie_browser/pkg/tmdb"
	"movie_browser/util"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type IMovieService interface {
	EnsureRecentMovies(ctx context.Context) error
	RefreshRecentMovies(ctx context.Context) ([]model.CachedMovie, error)
	GetRecentMovies(ctx context.Context) ([]model.CachedMovie, error)
	SearchMovies(ctx context.Context, query string, searchType string) ([]model.MovieSummary, error)
	GetMovieDetail(ctx context.Context, imdbId string) (*model.MovieDetail, error)
}

// OmdbSource is the part of the omdb client the movie service needs.
type OmdbSource interface {
	Search(ctx context.Context, p omdb.SearchParams) (*omdb.SearchResult, error)
	GetMovie(ctx context.Context, imdbID string) (*omdb.Movie, error)
}

// TmdbSource is the part of the tmdb client the movie service needs.
type TmdbSource interface {
	NowPlaying(ctx context.Context, page int) (*tmdb.MovieList, error)
	GetMovie(ctx context.Context, tmdbID int64) (*tmdb.Movie, error)
	FindByIMDbID(ctx context.Context, imdbID string) (*tmdb.Movie, error)
}

var (
	ErrMovieNotFound     = errors.New("movie not found")
	ErrEmptyQuery        = errors.New("query parameter is required")
	ErrInvalidSearchType = errors.New("invalid search type")
)

// NotFoundError carries the upstream message of a missing title.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrMovieNotFound
}

// RecentMoviesOptions tunes the refresh routine and the freshness gate.
type RecentMoviesOptions struct {
	Count          int
	Candidates     int
	MaxPages       int
	Year           int
	Window         time.Duration
	Concurrency    int
	RefreshTimeout time.Duration
}

func RecentMoviesOptionsFromConfigs() RecentMoviesOptions {
	c := configs.GetConfigs()
	return RecentMoviesOptions{
		Count:      c.RecentMoviesCount,
		Candidates: c.RecentMoviesCandidates,
		MaxPages:   c.RecentMoviesMaxPages,
		Year:       c.RecentMoviesYear,
		Window:     c.RecentMoviesCacheWindow,
	}
}

func (o RecentMoviesOptions) withDefaults() RecentMoviesOptions {
	if o.Count <= 0 {
		o.Count = 12
	}
	if o.Candidates <= 0 {
		o.Candidates = 24
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 6
	}
	if o.Window <= 0 {
		o.Window = 15 * time.Minute
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	if o.RefreshTimeout <= 0 || o.RefreshTimeout >= configs.RequestTimeout {
		o.RefreshTimeout = configs.RecentMoviesRefreshTimeout
	}
	return o
}

const (
	recentMoviesQuery      = "movie"
	tmdbPosterSize         = "w500"
	tmdbBackdropSize       = "w1280"
	refreshSingleflightKey = "recent"
)

type MovieService struct {
	movieRepo repository.IMovieRepository
	omdb      OmdbSource
	tmdb      TmdbSource
	opts      RecentMoviesOptions
	refresh   singleflight.Group
	now       func() time.Time
	timeout   time.Duration
}

// NewMovieService builds the service, tmdbSource may be nil to disable the second source.
func NewMovieService(movieRepo repository.IMovieRepository, omdbSource OmdbSource, tmdbSource TmdbSource, opts RecentMoviesOptions) *MovieService {
	return &MovieService{
		movieRepo: movieRepo,
		omdb:      omdbSource,
		tmdb:      tmdbSource,
		opts:      opts.withDefaults(),
		now:       time.Now,
		timeout:   10 * time.Second,
	}
}

//------------------------------------------
//------------------------------------------

// EnsureRecentMovies refreshes the cache unless exactly Count entries were written inside the window.
func (m *MovieService) EnsureRecentMovies(ctx context.Context) error {
	since := m.now().Add(-m.opts.Window)
	count, err := m.movieRepo.CountFreshMovies(ctx, since)
	if err != nil {
		return fmt.Errorf("count fresh movies: %w", err)
	}
	if count == int64(m.opts.Count) {
		return nil
	}

	log.Debug().Int64("fresh", count).Int("want", m.opts.Count).Msg("recent movies cache is stale")
	_, err = m.RefreshRecentMovies(ctx)
	return err
}

// RefreshRecentMovies rebuilds the cache from the upstreams. Concurrent callers share one run.
func (m *MovieService) RefreshRecentMovies(ctx context.Context) ([]model.CachedMovie, error) {
	res, err, _ := m.refresh.Do(refreshSingleflightKey, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opts.RefreshTimeout)
		defer cancel()
		return m.refreshRecentMovies(refreshCtx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.CachedMovie), nil
}

func (m *MovieService) refreshRecentMovies(ctx context.Context) ([]model.CachedMovie, error) {
	start := m.now()

	candidates, err := m.fetchCandidates(ctx)
	if err != nil {
		errorHandler.SaveError("Error fetching recent movie candidates", err)
		return nil, err
	}

	detailed, err := m.fetchReleaseDates(ctx, candidates)
	if err != nil {
		errorHandler.SaveError("Error fetching recent movie details", err)
		return nil, err
	}

	recent := selectRecent(detailed, m.opts.Count)
	cacheTimestamp := m.now().UTC()
	movies := make([]model.CachedMovie, 0, len(recent))
	for _, c := range recent {
		movies = append(movies, model.CachedMovie{
			Title:          c.Title,
			ExternalId:     c.ExternalId,
			Source:         c.Source,
			ReleaseDate:    c.ReleaseDate,
			PosterUrl:      c.PosterUrl,
			CacheTimestamp: cacheTimestamp,
		})
	}

	if err = m.movieRepo.ReplaceMovies(ctx, movies); err != nil {
		errorHandler.SaveError("Error replacing recent movies cache", err)
		return nil, fmt.Errorf("replace recent movies: %w", err)
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("stored", len(movies)).
		Dur("took", m.now().Sub(start)).
		Msg("recent movies cache refreshed")
	return movies, nil
}

func (m *MovieService) fetchCandidates(ctx context.Context) ([]model.MovieCandidate, error) {
	omdbCandidates, err := m.fetchOmdbCandidates(ctx)
	if err != nil {
		return nil, err
	}
	var tmdbCandidates []model.MovieCandidate
	if m.tmdb != nil {
		tmdbCandidates, err = m.fetchTmdbCandidates(ctx)
		if err != nil {
			return nil, err
		}
	}
	return mergeCandidates(omdbCandidates, tmdbCandidates), nil
}

func (m *MovieService) fetchOmdbCandidates(ctx context.Context) ([]model.MovieCandidate, error) {
	year := m.opts.Year
	if year <= 0 {
		year = m.now().Year()
	}

	result := make([]model.MovieCandidate, 0, m.opts.Candidates)
	for page := 1; len(result) < m.opts.Candidates && page <= m.opts.MaxPages; page++ {
		res, err := m.omdb.Search(ctx, omdb.SearchParams{
			Query: recentMoviesQuery,
			Type:  "movie",
			Year:  year,
			Page:  page,
		})
		if err != nil {
			if page > 1 && errors.Is(err, omdb.ErrNotFound) {
				// past the last page
				break
			}
			return nil, fmt.Errorf("omdb search page %d: %w", page, err)
		}
		for _, item := range res.Search {
			result = append(result, model.MovieCandidate{
				Title:      item.Title,
				ExternalId: item.ImdbID,
				PosterUrl:  omdb.PosterURL(item.Poster),
				Source:     model.SourceOmdb,
			})
		}
		total, _ := strconv.Atoi(res.TotalResults)
		if len(res.Search) == 0 || page*10 >= total {
			break
		}
	}
	return result, nil
}

func (m *MovieService) fetchTmdbCandidates(ctx context.Context) ([]model.MovieCandidate, error) {
	result := make([]model.MovieCandidate, 0, m.opts.Candidates)
	for page := 1; len(result) < m.opts.Candidates && page <= m.opts.MaxPages; page++ {
		res, err := m.tmdb.NowPlaying(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("tmdb now playing page %d: %w", page, err)
		}
		for i := range res.Results {
			movie := res.Results[i]
			result = append(result, model.MovieCandidate{
				Title:      movie.Title,
				ExternalId: strconv.FormatInt(movie.ID, 10),
				PosterUrl:  movie.PosterURL(tmdbPosterSize),
				Source:     model.SourceTmdb,
			})
		}
		if len(res.Results) == 0 || page >= res.TotalPages {
			break
		}
	}
	return result, nil
}

// mergeCandidates drops repeated ids inside a source and repeated titles across sources.
// Earlier lists win.
func mergeCandidates(lists ...[]model.MovieCandidate) []model.MovieCandidate {
	seenTitles := make(map[string]struct{})
	result := make([]model.MovieCandidate, 0)
	for _, list := range lists {
		seenIds := make(map[string]struct{})
		addedTitles := make(map[string]struct{})
		for _, c := range list {
			if c.ExternalId == "" {
				continue
			}
			if _, ok := seenIds[c.ExternalId]; ok {
				continue
			}
			seenIds[c.ExternalId] = struct{}{}

			title := util.NormalizeTitle(c.Title)
			if _, ok := seenTitles[title]; ok && title != "" {
				continue
			}
			addedTitles[title] = struct{}{}
			result = append(result, c)
		}
		for t := range addedTitles {
			seenTitles[t] = struct{}{}
		}
	}
	return result
}

// fetchReleaseDates fills ReleaseDate from the detail endpoints. Any failure aborts the whole batch.
func (m *MovieService) fetchReleaseDates(ctx context.Context, candidates []model.MovieCandidate) ([]model.MovieCandidate, error) {
	result := make([]model.MovieCandidate, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)

	for i := range candidates {
		i := i
		g.Go(func() error {
			c := candidates[i]
			switch c.Source {
			case model.SourceTmdb:
				id, err := strconv.ParseInt(c.ExternalId, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid tmdb id %q: %w", c.ExternalId, err)
				}
				movie, err := m.tmdb.GetMovie(gctx, id)
				if err != nil {
					return fmt.Errorf("tmdb movie %d: %w", id, err)
				}
				if released, ok := movie.Released(); ok {
					c.ReleaseDate = released
				}
				if poster := movie.PosterURL(tmdbPosterSize); poster != "" {
					c.PosterUrl = poster
				}
			default:
				movie, err := m.omdb.GetMovie(gctx, c.ExternalId)
				if err != nil {
					return fmt.Errorf("omdb movie %s: %w", c.ExternalId, err)
				}
				if released, ok := movie.ReleaseDate(); ok {
					c.ReleaseDate = released
				}
				if poster := omdb.PosterURL(movie.Poster); poster != "" {
					c.PosterUrl = poster
				}
			}
			result[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// selectRecent keeps dated entries, newest first, at most n.
func selectRecent(candidates []model.MovieCandidate, n int) []model.MovieCandidate {
	dated := make([]model.MovieCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.ReleaseDate.IsZero() {
			dated = append(dated, c)
		}
	}
	slices.SortStableFunc(dated, func(a, b model.MovieCandidate) int {
		if cmp := b.ReleaseDate.Compare(a.ReleaseDate); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.Title, b.Title)
	})
	if len(dated) > n {
		dated = dated[:n]
	}
	return dated
}

//------------------------------------------
//------------------------------------------

func (m *MovieService) GetRecentMovies(ctx context.Context) ([]model.CachedMovie, error) {
	return m.movieRepo.GetRecentMovies(ctx, m.opts.Count)
}

// SearchMovies proxies an omdb title search. searchType defaults to movie, actor searches are run as movie searches.
func (m *MovieService) SearchMovies(ctx context.Context, query string, searchType string) ([]model.MovieSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	upstreamType, err := normalizeSearchType(searchType)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.omdb.Search(ctx, omdb.SearchParams{Query: query, Type: upstreamType})
	if err != nil {
		return nil, mapOmdbError(err)
	}

	summaries := make([]model.MovieSummary, 0, len(res.Search))
	for _, item := range res.Search {
		summaries = append(summaries, model.MovieSummary{
			Title:      item.Title,
			ExternalId: item.ImdbID,
			Year:       item.Year,
			Type:       item.Type,
			PosterUrl:  omdb.PosterURL(item.Poster),
			Source:     model.SourceOmdb,
		})
	}
	return summaries, nil
}

func normalizeSearchType(searchType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(searchType)) {
	case "", "movie", "actor":
		return "movie", nil
	case "series":
		return "series", nil
	case "episode":
		return "episode", nil
	default:
		return "", ErrInvalidSearchType
	}
}

// GetMovieDetail returns the omdb detail merged with tmdb fields, cached in redis.
func (m *MovieService) GetMovieDetail(ctx context.Context, imdbId string) (*model.MovieDetail, error) {
	imdbId = strings.TrimSpace(imdbId)
	if imdbId == "" {
		return nil, &NotFoundError{Message: "Incorrect IMDb ID."}
	}

	if cached, err := getCachedMovieDetail(ctx, imdbId); err == nil && cached != nil {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	movie, err := m.omdb.GetMovie(ctx, imdbId)
	if err != nil {
		return nil, mapOmdbError(err)
	}
	detail := omdbToDetail(movie)

	if m.tmdb != nil {
		extra, err := m.tmdb.FindByIMDbID(ctx, imdbId)
		if err != nil {
			if errors.Is(err, tmdb.ErrNotFound) {
				log.Debug().Str("imdbId", imdbId).Msg("movie not found in tmdb")
			} else {
				log.Warn().Err(err).Str("imdbId", imdbId).Msg("tmdb lookup failed")
			}
		} else {
			mergeTmdbDetail(detail, extra)
		}
	}

	_ = setMovieDetailCache(ctx, imdbId, detail)
	return detail, nil
}

func mapOmdbError(err error) error {
	var respErr *omdb.ResponseError
	if errors.As(err, &respErr) && errors.Is(err, omdb.ErrNotFound) {
		return &NotFoundError{Message: respErr.Message}
	}
	return err
}

func omdbToDetail(movie *omdb.Movie) *model.MovieDetail {
	ratings := make([]model.MovieRating, 0, len(movie.Ratings))
	for _, r := range movie.Ratings {
		ratings = append(ratings, model.MovieRating{Source: r.Source, Value: r.Value})
	}
	return &model.MovieDetail{
		Title:      movie.Title,
		Year:       movie.Year,
		Rated:      movie.Rated,
		Released:   movie.Released,
		Runtime:    movie.Runtime,
		Genre:      movie.Genre,
		Director:   movie.Director,
		Writer:     movie.Writer,
		Actors:     movie.Actors,
		Plot:       movie.Plot,
		Language:   movie.Language,
		Country:    movie.Country,
		Awards:     movie.Awards,
		Poster:     movie.Poster,
		Ratings:    ratings,
		Metascore:  movie.Metascore,
		ImdbRating: movie.ImdbRating,
		ImdbVotes:  movie.ImdbVotes,
		ImdbID:     movie.ImdbID,
		Type:       movie.Type,
		DVD:        movie.DVD,
		BoxOffice:  movie.BoxOffice,
		Production: movie.Production,
		Website:    movie.Website,
	}
}

func mergeTmdbDetail(detail *model.MovieDetail, movie *tmdb.Movie) {
	detail.TmdbId = movie.ID
	detail.Overview = movie.Overview
	detail.BackdropUrl = movie.BackdropURL(tmdbBackdropSize)
	detail.VoteAverage = movie.VoteAverage
	detail.VoteCount = movie.VoteCount
	if omdb.PosterURL(detail.Poster) == "" {
		detail.Poster = movie.PosterURL(tmdbPosterSize)
	}
}
