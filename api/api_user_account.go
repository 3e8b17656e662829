package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cardlink/go-cardlink-server/api/interceptors"
	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/services"
	"github.com/cardlink/go-cardlink-server/types"
	"github.com/cardlink/go-cardlink-server/util"
)

const maxAvatarSizeBytes = 5 << 20 // 5 MiB

type UserAccountApi struct {
	userService *services.UserService
	s3Service   *services.S3Service
	validate    *validator.Validate
}

func NewUserAccountApi(userService *services.UserService, s3Service *services.S3Service) *UserAccountApi {
	return &UserAccountApi{
		userService: userService,
		s3Service:   s3Service,
		validate:    validator.New(),
	}
}

// Register a new user
// @Summary Register a new user
// @Description Creates a user profile with a hashed password and returns a session token
// @Tags User Account
// @Param input body types.InputRegister true "Registration input"
// @Success 201 {object} types.OutputLogin
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 409 {object} api.ApiError "email already registered"
// @Failure 500 {object} api.ApiError "failed to register"
// @Accept json
// @Produce json
// @Router /api/v1/register [post]
func (ua *UserAccountApi) Register(c *gin.Context) {
	var input types.InputRegister
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := ua.validate.Struct(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, ValidatorErrorToUser(err.(validator.ValidationErrors)))
		return
	}

	profile, err := ua.userService.Register(c.Request.Context(), &input)
	if err != nil {
		if err == types.ErrConflict {
			ApiErrorf(c, http.StatusConflict, "email already registered")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to register user")
		return
	}

	token, tErr := interceptors.GenerateSessionToken(global.PrivateKey, profile.ID)
	if tErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to create session token")
		return
	}
	profile.PasswordHash = ""
	c.JSON(http.StatusCreated, types.OutputLogin{Token: token, Address: profile.ID, Profile: profile})
}

// Login with email and password
// @Summary Login with email and password
// @Description Verifies the credentials and returns a signed session token
// @Tags User Account
// @Param input body types.InputEmailPassword true "Login input"
// @Success 200 {object} types.OutputLogin
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 401 {object} api.ApiError "invalid credentials"
// @Failure 500 {object} api.ApiError "failed to login"
// @Accept json
// @Produce json
// @Router /api/v1/login [post]
func (ua *UserAccountApi) Login(c *gin.Context) {
	var input types.InputEmailPassword
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := ua.validate.Struct(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, ValidatorErrorToUser(err.(validator.ValidationErrors)))
		return
	}

	profile, err := ua.userService.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if err == types.ErrInvalidCredentials {
			ApiErrorf(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to login")
		return
	}

	token, tErr := interceptors.GenerateSessionToken(global.PrivateKey, profile.ID)
	if tErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to create session token")
		return
	}
	profile.PasswordHash = ""
	c.JSON(http.StatusOK, types.OutputLogin{Token: token, Address: profile.ID, Profile: profile})
}

// Get logged in users profile
// @Security Bearer
// @Summary Get logged in users profile
// @Description Get logged in users profile
// @Tags User Account
// @Success 200 {object} types.UserProfile
// @Failure 401 {object} api.ApiError "address not found"
// @Failure 500 {object} api.ApiError "user profile not found"
// @Accept json
// @Produce json
// @Router /api/v1/user/me [get]
func (ua *UserAccountApi) GetUserProfile(c *gin.Context) {
	address := c.GetString("subjectAddress")
	if address == "" {
		ApiErrorf(c, http.StatusUnauthorized, "address not found")
		return
	}
	profile, err := ua.userService.Get(c.Request.Context(), address)
	if err != nil {
		ApiErrorf(c, http.StatusInternalServerError, "user profile not found")
		return
	}
	profile.PasswordHash = ""
	c.JSON(http.StatusOK, profile)
}

// Update logged in users profile
// @Security Bearer
// @Summary Update logged in users profile
// @Description Update logged in users profile
// @Tags User Account
// @Param input body types.UserProfile true "User Profile"
// @Success 200 {object} types.UserProfile
// @Failure 400 {object} api.ApiError "invalid input"
// @Failure 500 {object} api.ApiError "failed to save user profile"
// @Accept json
// @Produce json
// @Router /api/v1/user/me [put]
func (ua *UserAccountApi) UpdateUserProfile(c *gin.Context) {
	address := c.GetString("subjectAddress")
	if address == "" {
		ApiErrorf(c, http.StatusUnauthorized, "address not found")
		return
	}

	var input types.UserProfile
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}

	existing, eErr := ua.userService.Get(c.Request.Context(), address)
	if eErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to get user profile")
		return
	}

	// these fields are not allowed to be changed (always copy from existing)
	input.ID = existing.ID
	input.Email = existing.Email
	input.PasswordHash = ""
	input.Created = existing.Created
	input.Modified = time.Now().UTC().UnixMilli()

	if err := ua.validate.Struct(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, ValidatorErrorToUser(err.(validator.ValidationErrors)))
		return
	}
	profile, err := ua.userService.Save(c.Request.Context(), address, &input)
	if err != nil {
		if err == types.ErrConflict {
			ApiErrorf(c, http.StatusConflict, "conflict")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to save user profile")
		return
	}
	profile.PasswordHash = ""
	c.JSON(http.StatusOK, profile)
}

// Upload avatar or company logo
// @Security Bearer
// @Summary Upload avatar or company logo
// @Description Stores the image and writes the media path to the profile; kind query parameter is avatar or logo
// @Tags User Account
// @Param kind query string false "avatar (default) or logo"
// @Success 200 {object} types.OutputMediaUploaded
// @Failure 400 {object} api.ApiError "invalid image"
// @Failure 500 {object} api.ApiError "failed to upload"
// @Accept mpfd
// @Produce json
// @Router /api/v1/user/media [post]
func (ua *UserAccountApi) UploadMedia(c *gin.Context) {
	address := c.GetString("subjectAddress")
	if address == "" {
		ApiErrorf(c, http.StatusUnauthorized, "address not found")
		return
	}

	file, header, fErr := c.Request.FormFile("file")
	if fErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, rErr := io.ReadAll(io.LimitReader(file, maxAvatarSizeBytes+1))
	if rErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(content) > maxAvatarSizeBytes {
		ApiErrorf(c, http.StatusBadRequest, "file too large")
		return
	}

	normalized, nErr := util.NormalizeImageToJPEG(content, header.Header.Get("Content-Type"))
	if nErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "unsupported image: %s", nErr.Error())
		return
	}

	kind := c.DefaultQuery("kind", "avatar")
	path := address + "/" + kind + "-" + uuid.NewString() + ".jpg"
	mediaPath, uErr := ua.s3Service.UploadMedia(global.Conf.Storage.Bucket, path, normalized)
	if uErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to upload media")
		return
	}

	profile, gErr := ua.userService.Get(c.Request.Context(), address)
	if gErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to get user profile")
		return
	}
	if kind == "logo" {
		profile.CompanyLogo = mediaPath
	} else {
		profile.ProfileImage = mediaPath
	}
	if _, sErr := ua.userService.Save(c.Request.Context(), address, profile); sErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to save user profile")
		return
	}
	c.JSON(http.StatusOK, types.OutputMediaUploaded{Path: mediaPath})
}
