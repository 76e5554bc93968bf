package handler

import (
	"errors"
	"movie_browser/internal/service"
	"movie_browser/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type IMovieHandler interface {
	EnsureRecentMovies(c *fiber.Ctx) error
	GetRecentMovies(c *fiber.Ctx) error
	SearchMovies(c *fiber.Ctx) error
	GetMovieDetail(c *fiber.Ctx) error
}

type MovieHandler struct {
	movieService service.IMovieService
}

func NewMovieHandler(movieService service.IMovieService) *MovieHandler {
	return &MovieHandler{
		movieService: movieService,
	}
}

//------------------------------------------
//------------------------------------------

// EnsureRecentMovies refreshes a stale cache before the request reaches the list handler.
func (m *MovieHandler) EnsureRecentMovies(c *fiber.Ctx) error {
	if err := m.movieService.EnsureRecentMovies(c.UserContext()); err != nil {
		return response.ResponseErrorDetail(c, response.RecentMoviesUpdateError, err, fiber.StatusInternalServerError)
	}
	return c.Next()
}

func (m *MovieHandler) GetRecentMovies(c *fiber.Ctx) error {
	movies, err := m.movieService.GetRecentMovies(c.UserContext())
	if err != nil {
		return response.ResponseErrorDetail(c, response.RecentMoviesFetchError, err, fiber.StatusInternalServerError)
	}
	return response.ResponseData(c, movies)
}

func (m *MovieHandler) SearchMovies(c *fiber.Ctx) error {
	query := c.Query("query", "")
	searchType := c.Query("type", "")

	res, err := m.movieService.SearchMovies(c.UserContext(), query, searchType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuery):
			return response.ResponseError(c, response.QueryRequired, fiber.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidSearchType):
			return response.ResponseError(c, response.InvalidSearchType, fiber.StatusBadRequest)
		case errors.Is(err, service.ErrMovieNotFound):
			return response.ResponseErrorDetail(c, response.MovieNotFound, err, fiber.StatusNotFound)
		}
		return response.ResponseErrorDetail(c, response.SearchError, err, fiber.StatusInternalServerError)
	}
	return response.ResponseData(c, res)
}

func (m *MovieHandler) GetMovieDetail(c *fiber.Ctx) error {
	id := c.Params("id", "")
	if id == "" || id == ":id" {
		return response.ResponseError(c, "Invalid movie id", fiber.StatusBadRequest)
	}

	res, err := m.movieService.GetMovieDetail(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			return response.ResponseErrorDetail(c, response.MovieNotFound, err, fiber.StatusNotFound)
		}
		return response.ResponseErrorDetail(c, response.MovieDetailsError, err, fiber.StatusInternalServerError)
	}
	return response.ResponseData(c, res)
}
