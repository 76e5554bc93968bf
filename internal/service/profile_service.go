package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"movie_browser/configs"
	"movie_browser/internal/repository"
	"movie_browser/model"
	errorHandler "movie_browser/pkg/error"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type IProfileService interface {
	GetProfile(ctx context.Context, userId string) (*model.User, error)
	UploadPhoto(ctx context.Context, userId string, file *multipart.FileHeader) (string, error)
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPhotoTooLarge      = errors.New("photo exceeds the size limit")
	ErrPhotoInvalidFormat = errors.New("photo format is not supported")
)

const (
	profilePhotoSize    = 512
	profilePhotoQuality = 80
	photoExtension      = ".webp"
)

type ProfileService struct {
	userRepo   repository.IUserRepository
	photoStore *PhotoStore
	timeout    time.Duration
}

func NewProfileService(userRepo repository.IUserRepository, photoStore *PhotoStore) *ProfileService {
	return &ProfileService{
		userRepo:   userRepo,
		photoStore: photoStore,
		timeout:    5 * time.Second,
	}
}

//------------------------------------------
//------------------------------------------

func (p *ProfileService) GetProfile(ctx context.Context, userId string) (*model.User, error) {
	id, err := primitive.ObjectIDFromHex(userId)
	if err != nil {
		return nil, ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	user, err := p.userRepo.GetUserById(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UploadPhoto stores a resized webp copy of the file and points the user at it.
// The previous uploaded photo is removed once the new url is saved.
func (p *ProfileService) UploadPhoto(ctx context.Context, userId string, file *multipart.FileHeader) (string, error) {
	id, err := primitive.ObjectIDFromHex(userId)
	if err != nil {
		return "", ErrUserNotFound
	}

	ext, err := checkPhotoLimits(file, configs.GetDbConfigs())
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, err := decodePhoto(src, ext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPhotoInvalidFormat, err)
	}
	img = imaging.Fit(img, profilePhotoSize, profilePhotoSize, imaging.Lanczos)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	user, err := p.userRepo.GetUserById(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	photoUrl, err := p.photoStore.Save(img)
	if err != nil {
		return "", err
	}

	if err = p.userRepo.UpdatePhotoUrl(ctx, id, photoUrl); err != nil {
		_ = p.photoStore.Remove(photoUrl)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if err = p.photoStore.Remove(user.PhotoUrl); err != nil {
		errorMessage := fmt.Sprintf("Error removing old profile photo: %v", err)
		errorHandler.SaveError(errorMessage, err)
	}
	return photoUrl, nil
}

func checkPhotoLimits(file *multipart.FileHeader, limits configs.DbConfigData) (string, error) {
	if limits.ProfileFileSizeLimit > 0 && file.Size > limits.ProfileFileSizeLimit*1024*1024 {
		return "", ErrPhotoTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if ext == "" {
		return "", ErrPhotoInvalidFormat
	}
	for _, allowed := range strings.Split(limits.ProfileImageExtensionLimit, ",") {
		if strings.TrimSpace(strings.ToLower(allowed)) == ext {
			return ext, nil
		}
	}
	return "", ErrPhotoInvalidFormat
}

func decodePhoto(r io.Reader, ext string) (image.Image, error) {
	if ext == "webp" {
		return webp.Decode(r, &decoder.Options{})
	}
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

//------------------------------------------
//------------------------------------------

// PhotoStore keeps profile photos on local disk, served under /uploads.
type PhotoStore struct {
	dir        string
	urlPrefix  string
	defaultUrl string
	encode     func(w io.Writer, img image.Image) error
}

func NewPhotoStore(dir string, serverAddress string, defaultUrl string) *PhotoStore {
	return &PhotoStore{
		dir:        dir,
		urlPrefix:  strings.TrimSuffix(serverAddress, "/") + "/uploads/",
		defaultUrl: defaultUrl,
		encode:     encodeWebp,
	}
}

func encodeWebp(w io.Writer, img image.Image) error {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetPhoto, profilePhotoQuality)
	if err != nil {
		return err
	}
	return webp.Encode(w, img, options)
}

func (s *PhotoStore) DefaultUrl() string {
	return s.defaultUrl
}

func (s *PhotoStore) Save(img image.Image) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	filename := uuid.NewString() + photoExtension
	path := filepath.Join(s.dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err = s.encode(out, img); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("encode photo: %w", err)
	}
	if err = out.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return s.urlPrefix + filename, nil
}

// Remove deletes a photo this store created. The default photo and foreign urls are left alone.
func (s *PhotoStore) Remove(photoUrl string) error {
	if photoUrl == "" || photoUrl == s.defaultUrl || !strings.HasPrefix(photoUrl, s.urlPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(photoUrl, s.urlPrefix))
	if name == "." || name == "/" || !strings.HasSuffix(name, photoExtension) {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	log.Debug().Str("file", name).Msg("profile photo removed")
	return nil
}
