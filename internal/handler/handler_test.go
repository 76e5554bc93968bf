package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"movie_browser/configs"
	"movie_browser/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testUserId = "64b7f0c2a1b2c3d4e5f60718"

func withTestConfigs(t *testing.T) {
	t.Helper()
	previous := configs.GetConfigs()
	configs.SetConfigs(configs.ConfigStruct{JwtSecret: "test-secret", TokenExpire: time.Hour})
	t.Cleanup(func() { configs.SetConfigs(previous) })
}

// fakeAuth puts claims for testUserId into Locals the way the auth middleware does.
func fakeAuth(c *fiber.Ctx) error {
	c.Locals("token", "session-token")
	c.Locals("jwtUserData", &util.MyJwtClaims{UserId: testUserId, Username: "ann"})
	return c.Next()
}

func jsonRequest(method string, target string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func tokenCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}

func multipartRequest(t *testing.T, target string, field string, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
