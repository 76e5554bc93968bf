package handler

import (
	"context"
	"mime/multipart"
	"movie_browser/model"
	"movie_browser/util"
)

type fakeMovieService struct {
	ensureErr error
	recent    []model.CachedMovie
	search    func(query string, searchType string) ([]model.MovieSummary, error)
	detail    func(id string) (*model.MovieDetail, error)
	ensured   int
}

func (f *fakeMovieService) EnsureRecentMovies(context.Context) error {
	f.ensured++
	return f.ensureErr
}

func (f *fakeMovieService) RefreshRecentMovies(context.Context) ([]model.CachedMovie, error) {
	return f.recent, nil
}

func (f *fakeMovieService) GetRecentMovies(context.Context) ([]model.CachedMovie, error) {
	return f.recent, nil
}

func (f *fakeMovieService) SearchMovies(_ context.Context, query string, searchType string) ([]model.MovieSummary, error) {
	return f.search(query, searchType)
}

func (f *fakeMovieService) GetMovieDetail(_ context.Context, id string) (*model.MovieDetail, error) {
	return f.detail(id)
}

type fakeAuthService struct {
	registerErr  error
	loginErr     error
	federatedErr error
	resetReqErr  error
	resetErr     error
	deleteErr    error
	loggedOut    []string
	deleted      []string
	lastRegister *model.RegisterReq
}

func (f *fakeAuthService) token(userId string, username string) (*util.TokenDetail, error) {
	return util.CreateToken(userId, username)
}

func (f *fakeAuthService) Register(_ context.Context, req *model.RegisterReq) (*model.User, *util.TokenDetail, error) {
	f.lastRegister = req
	if f.registerErr != nil {
		return nil, nil, f.registerErr
	}
	token, err := f.token(testUserId, req.Username)
	return &model.User{Username: req.Username}, token, err
}

func (f *fakeAuthService) Login(_ context.Context, req *model.LoginReq) (*model.User, *util.TokenDetail, error) {
	if f.loginErr != nil {
		return nil, nil, f.loginErr
	}
	token, err := f.token(testUserId, req.Username)
	return &model.User{Username: req.Username}, token, err
}

func (f *fakeAuthService) FederatedLogin(_ context.Context, _ string) (*model.User, *util.TokenDetail, error) {
	if f.federatedErr != nil {
		return nil, nil, f.federatedErr
	}
	token, err := f.token(testUserId, "ann")
	return &model.User{Username: "ann"}, token, err
}

func (f *fakeAuthService) Logout(_ context.Context, token string, _ *util.MyJwtClaims) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func (f *fakeAuthService) RequestPasswordReset(context.Context, string) error {
	return f.resetReqErr
}

func (f *fakeAuthService) ResetPassword(context.Context, string, string) error {
	return f.resetErr
}

func (f *fakeAuthService) DeleteAccount(_ context.Context, token string, claims *util.MyJwtClaims) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, claims.UserId)
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

type fakeProfileService struct {
	user      *model.User
	err       error
	uploadErr error
	uploaded  string
}

func (f *fakeProfileService) GetProfile(context.Context, string) (*model.User, error) {
	return f.user, f.err
}

func (f *fakeProfileService) UploadPhoto(_ context.Context, _ string, file *multipart.FileHeader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = file.Filename
	return "http://localhost:5001/uploads/new.webp", nil
}
