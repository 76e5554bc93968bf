// Package client is a Go client for the movie browser API.
//
// A Session owns its cookie jar and tracks whether it is logged in. It starts
// unauthenticated, becomes authenticated after Login or Register and drops back
// on Logout or on any 401 answer from the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"movie_browser/model"
	"movie_browser/pkg/response"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

var ErrUnauthorized = errors.New("client: not authenticated")

// APIError is a non 2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
	Fields     []response.FieldError
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && len(e.Fields) > 0 {
		msg = e.Fields[0].Msg
	}
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, msg, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

type Option func(*Session)

// WithHTTPClient sets the transport and timeout, the session installs its own jar on it.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Session) {
		s.httpClient = hc
	}
}

type Session struct {
	baseURL       string
	httpClient    *http.Client
	jar           *sessionJar
	mux           sync.RWMutex
	authenticated bool
}

// sessionJar is a cookie jar that can be emptied while requests are in flight.
type sessionJar struct {
	mux sync.RWMutex
	jar *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	j := &sessionJar{}
	return j, j.Reset()
}

func (j *sessionJar) Reset() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.mux.Lock()
	j.jar = jar
	j.mux.Unlock()
	return nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mux.RLock()
	defer j.mux.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mux.RLock()
	defer j.mux.RUnlock()
	return j.jar.Cookies(u)
}

func NewSession(baseURL string, opts ...Option) (*Session, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	s := &Session{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, err
	}
	s.jar = jar
	s.httpClient.Jar = jar
	return s, nil
}

func (s *Session) Authenticated() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.authenticated
}

func (s *Session) setAuthenticated(v bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.authenticated = v
	if !v {
		_ = s.jar.Reset()
	}
}

//------------------------------------------
//------------------------------------------

func (s *Session) Register(ctx context.Context, username string, email string, password string) error {
	body := model.RegisterReq{Username: username, Email: email, Password: password}
	if err := s.do(ctx, http.MethodPost, "/api/auth/register", body, nil); err != nil {
		return err
	}
	s.setAuthenticated(true)
	return nil
}

func (s *Session) Login(ctx context.Context, username string, password string) error {
	body := model.LoginReq{Username: username, Password: password}
	if err := s.do(ctx, http.MethodPost, "/api/auth/login", body, nil); err != nil {
		return err
	}
	s.setAuthenticated(true)
	return nil
}

// Logout always leaves the session unauthenticated, even when the request fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	s.setAuthenticated(false)
	return err
}

func (s *Session) RecentMovies(ctx context.Context) ([]model.CachedMovie, error) {
	var movies []model.CachedMovie
	if err := s.do(ctx, http.MethodGet, "/api/movies/recent", nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (s *Session) Search(ctx context.Context, query string, searchType string) ([]model.MovieSummary, error) {
	params := url.Values{}
	params.Set("query", query)
	if searchType != "" {
		params.Set("type", searchType)
	}

	var results []model.MovieSummary
	if err := s.do(ctx, http.MethodGet, "/api/movies/search?"+params.Encode(), nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Session) Movie(ctx context.Context, imdbId string) (*model.MovieDetail, error) {
	var detail model.MovieDetail
	if err := s.do(ctx, http.MethodGet, "/api/movies/movie/"+url.PathEscape(imdbId), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *Session) Profile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := s.do(ctx, http.MethodGet, "/api/profile/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

//------------------------------------------
//------------------------------------------

func (s *Session) do(ctx context.Context, method string, path string, in interface{}, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			s.setAuthenticated(false)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Message string                `json:"message"`
		Error   string                `json:"error"`
		Errors  []response.FieldError `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
		apiErr.Detail = body.Error
		apiErr.Fields = body.Errors
	}
	if apiErr.Message == "" && len(apiErr.Fields) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
