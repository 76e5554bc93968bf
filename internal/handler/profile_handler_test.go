package handler

import (
	"errors"
	"movie_browser/internal/service"
	"movie_browser/model"
	"movie_browser/pkg/response"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileApp(svc *fakeProfileService) *fiber.App {
	h := NewProfileHandler(svc)
	app := fiber.New()
	app.Get("/api/profile/profile", fakeAuth, h.GetProfile)
	app.Post("/api/profile/profile/upload-photo", fakeAuth, h.UploadPhoto)
	return app
}

func TestGetProfile(t *testing.T) {
	svc := &fakeProfileService{user: &model.User{Username: "ann", Email: "ann@x.com", PasswordHash: "$2a$10$secret"}}

	resp, err := newProfileApp(svc).Test(httptest.NewRequest(http.MethodGet, "/api/profile/profile", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "ann", body["username"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "PasswordHash")

	resp, err = newProfileApp(&fakeProfileService{err: service.ErrUserNotFound}).Test(httptest.NewRequest(http.MethodGet, "/api/profile/profile", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadPhoto(t *testing.T) {
	svc := &fakeProfileService{}

	resp, err := newProfileApp(svc).Test(multipartRequest(t, "/api/profile/profile/upload-photo", "photo", "me.png", []byte("png")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "me.png", svc.uploaded)

	var body model.UploadPhotoRes
	decode(t, resp, &body)
	assert.Equal(t, response.PhotoUploaded, body.Message)
	assert.Equal(t, "http://localhost:5001/uploads/new.webp", body.PhotoUrl)
}

func TestUploadPhoto_Errors(t *testing.T) {
	tests := []struct {
		name  string
		svc   *fakeProfileService
		field string
		code  int
	}{
		{"no file", &fakeProfileService{}, "", http.StatusBadRequest},
		{"too large", &fakeProfileService{uploadErr: service.ErrPhotoTooLarge}, "photo", http.StatusRequestEntityTooLarge},
		{"bad format", &fakeProfileService{uploadErr: service.ErrPhotoInvalidFormat}, "photo", http.StatusBadRequest},
		{"storage failure", &fakeProfileService{uploadErr: errors.New("disk full")}, "photo", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, "/api/profile/profile/upload-photo", tt.field, "me.png", []byte("png"))
			resp, err := newProfileApp(tt.svc).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}
