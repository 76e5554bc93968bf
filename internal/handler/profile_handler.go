package handler

import (
	"errors"
	"movie_browser/internal/service"
	"movie_browser/model"
	"movie_browser/pkg/response"
	"movie_browser/util"

	"github.com/gofiber/fiber/v2"
)

type IProfileHandler interface {
	GetProfile(c *fiber.Ctx) error
	UploadPhoto(c *fiber.Ctx) error
}

type ProfileHandler struct {
	profileService service.IProfileService
}

func NewProfileHandler(profileService service.IProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

//------------------------------------------
//------------------------------------------

func (p *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	jwtUserData := c.Locals("jwtUserData").(*util.MyJwtClaims)

	user, err := p.profileService.GetProfile(c.UserContext(), jwtUserData.UserId)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return response.ResponseError(c, response.UserNotFound, fiber.StatusNotFound)
		}
		return response.ResponseErrorDetail(c, response.ServerError, err, fiber.StatusInternalServerError)
	}
	return response.ResponseData(c, user)
}

func (p *ProfileHandler) UploadPhoto(c *fiber.Ctx) error {
	jwtUserData := c.Locals("jwtUserData").(*util.MyJwtClaims)

	file, err := c.FormFile("photo")
	if err != nil {
		return response.ResponseError(c, response.PhotoRequired, fiber.StatusBadRequest)
	}

	photoUrl, err := p.profileService.UploadPhoto(c.UserContext(), jwtUserData.UserId, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPhotoTooLarge):
			return response.ResponseError(c, response.PhotoTooLarge, fiber.StatusRequestEntityTooLarge)
		case errors.Is(err, service.ErrPhotoInvalidFormat):
			return response.ResponseError(c, response.PhotoInvalidFormat, fiber.StatusBadRequest)
		case errors.Is(err, service.ErrUserNotFound):
			return response.ResponseError(c, response.UserNotFound, fiber.StatusNotFound)
		}
		return response.ResponseErrorDetail(c, response.InternalServerError, err, fiber.StatusInternalServerError)
	}

	return response.ResponseData(c, model.UploadPhotoRes{
		Message:  response.PhotoUploaded,
		PhotoUrl: photoUrl,
	})
}
