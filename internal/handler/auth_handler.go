package handler

import (
	"errors"
	"movie_browser/api/middleware"
	"movie_browser/configs"
	"movie_browser/internal/service"
	"movie_browser/model"
	"movie_browser/pkg/response"
	"movie_browser/pkg/validation"
	"movie_browser/util"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type IAuthHandler interface {
	Register(c *fiber.Ctx) error
	Login(c *fiber.Ctx) error
	FederatedLogin(c *fiber.Ctx) error
	Logout(c *fiber.Ctx) error
	RequestPasswordReset(c *fiber.Ctx) error
	ResetPassword(c *fiber.Ctx) error
	DeleteAccount(c *fiber.Ctx) error
}

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

//------------------------------------------
//------------------------------------------

func (a *AuthHandler) Register(c *fiber.Ctx) error {
	var req model.RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, response.BadRequestBody, fiber.StatusBadRequest)
	}
	if errs := validateRegisterReq(&req); len(errs) > 0 {
		return response.ResponseValidationErrors(c, errs)
	}

	_, token, err := a.authService.Register(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExist) {
			return response.ResponseError(c, response.UserAlreadyExist, fiber.StatusConflict)
		}
		return response.ResponseErrorDetail(c, response.ServerError, err, fiber.StatusInternalServerError)
	}

	setTokenCookie(c, token)
	return response.ResponseCreated(c, response.RegisterSuccess)
}

func (a *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginReq
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, response.BadRequestBody, fiber.StatusBadRequest)
	}
	if errs := validation.ValidateStruct(&req); len(errs) > 0 {
		return response.ResponseError(c, response.InvalidCredentials, fiber.StatusUnauthorized)
	}

	_, token, err := a.authService.Login(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return response.ResponseError(c, response.InvalidCredentials, fiber.StatusUnauthorized)
		}
		return response.ResponseErrorDetail(c, response.ServerError, err, fiber.StatusInternalServerError)
	}

	setTokenCookie(c, token)
	return response.ResponseOK(c, response.LoginSuccess)
}

func (a *AuthHandler) FederatedLogin(c *fiber.Ctx) error {
	var req model.FederatedLoginReq
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, response.BadRequestBody, fiber.StatusBadRequest)
	}
	if errs := validation.ValidateStruct(&req); len(errs) > 0 {
		return response.ResponseValidationErrors(c, toResponseErrors(errs))
	}

	_, token, err := a.authService.FederatedLogin(c.UserContext(), req.Token)
	if err != nil {
		if errors.Is(err, service.ErrFederatedAuthFailed) {
			return response.ResponseError(c, response.FederatedAuthFailed, fiber.StatusUnauthorized)
		}
		return response.ResponseErrorDetail(c, response.FederatedAuthFailed, err, fiber.StatusInternalServerError)
	}

	setTokenCookie(c, token)
	return response.ResponseOK(c, response.LoginSuccess)
}

// Logout works without a valid session, the cookie is cleared either way.
func (a *AuthHandler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(middleware.TokenCookieName, "")
	if token != "" {
		if _, claims, err := util.VerifyToken(token); err == nil {
			_ = a.authService.Logout(c.UserContext(), token, claims)
		}
	}

	clearTokenCookie(c)
	return response.ResponseOK(c, response.LogoutSuccess)
}

func (a *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req model.RequestResetReq
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, response.BadRequestBody, fiber.StatusBadRequest)
	}
	if strings.TrimSpace(req.Email) == "" {
		return response.ResponseError(c, response.EmailRequired, fiber.StatusBadRequest)
	}

	err := a.authService.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotFound) {
			return response.ResponseError(c, response.EmailNotFound, fiber.StatusBadRequest)
		}
		return response.ResponseErrorDetail(c, response.ResetRequestError, err, fiber.StatusInternalServerError)
	}
	return response.ResponseOK(c, response.ResetLinkSent)
}

func (a *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	resetToken := c.Params("token", "")
	if resetToken == "" || resetToken == ":token" {
		return response.ResponseError(c, response.ResetTokenInvalid, fiber.StatusBadRequest)
	}

	var req model.ResetPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return response.ResponseError(c, response.BadRequestBody, fiber.StatusBadRequest)
	}
	if errs := validation.ValidateStruct(&req); len(errs) > 0 {
		return response.ResponseValidationErrors(c, toResponseErrors(errs))
	}

	err := a.authService.ResetPassword(c.UserContext(), resetToken, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			return response.ResponseError(c, response.ResetTokenInvalid, fiber.StatusBadRequest)
		}
		return response.ResponseErrorDetail(c, response.ResetError, err, fiber.StatusInternalServerError)
	}
	return response.ResponseOK(c, response.ResetSuccess)
}

func (a *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	jwtUserData := c.Locals("jwtUserData").(*util.MyJwtClaims)
	token, _ := c.Locals("token").(string)

	err := a.authService.DeleteAccount(c.UserContext(), token, jwtUserData)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return response.ResponseError(c, response.UserNotFound, fiber.StatusNotFound)
		}
		return response.ResponseErrorDetail(c, response.AccountDeleteFail, err, fiber.StatusInternalServerError)
	}

	clearTokenCookie(c)
	return response.ResponseOK(c, response.AccountDeleted)
}

//------------------------------------------
//------------------------------------------

func setTokenCookie(c *fiber.Ctx, token *util.TokenDetail) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token.Token,
		Path:     "/",
		Expires:  token.ExpiresAt,
		MaxAge:   int(time.Until(token.ExpiresAt).Round(time.Second).Seconds()),
		HTTPOnly: true,
		Secure:   configs.GetConfigs().CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   configs.GetConfigs().CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func validateRegisterReq(req *model.RegisterReq) []response.FieldError {
	errs := validation.ValidateStruct(req)
	emailReported := false
	for _, e := range errs {
		if e.Field == "email" {
			emailReported = true
		}
	}
	if !emailReported {
		if e := validation.ValidateEmail(req.Email); e != nil {
			errs = append(errs, *e)
		}
	}
	return toResponseErrors(errs)
}

func toResponseErrors(errs []validation.FieldError) []response.FieldError {
	result := make([]response.FieldError, 0, len(errs))
	for _, e := range errs {
		result = append(result, response.FieldError{Field: e.Field, Msg: e.Msg})
	}
	return result
}
