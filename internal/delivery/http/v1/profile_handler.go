package v1

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/image/draw"

	"go-tutoring-backend/internal/delivery/http/response"
	"go-tutoring-backend/internal/domain"
	"go-tutoring-backend/pkg/apperror"
	"go-tutoring-backend/pkg/storage"
)

const (
	maxAvatarBytes     = 5 << 20
	avatarMaxDimension = 512
	avatarJPEGQuality  = 85
)

type ProfileHandler struct {
	authUC  domain.AuthUsecase
	storage *storage.Client
}

func NewProfileHandler(r *gin.RouterGroup, authUC domain.AuthUsecase, storageClient *storage.Client) {
	handler := &ProfileHandler{
		authUC:  authUC,
		storage: storageClient,
	}

	profile := r.Group("/profile")
	{
		profile.PUT("/avatar", handler.UploadAvatar)
	}
}

// UploadAvatar godoc
// @Summary      Upload a profile avatar
// @Description  Accepts a JPEG or PNG, downscales it, stores it in object storage and saves the URL on the user
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Avatar image"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /profile/avatar [put]
// @Security     BearerAuth
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if h.storage == nil {
		c.Error(apperror.New(http.StatusServiceUnavailable, "Avatar storage is not configured", nil))
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("No file uploaded"))
		return
	}
	if file.Size > maxAvatarBytes {
		c.Error(apperror.BadRequest("Avatar must be 5MB or smaller"))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	contentType := http.DetectContentType(raw)
	if !strings.HasPrefix(contentType, "image/") {
		c.Error(apperror.BadRequest("Avatar must be an image"))
		return
	}

	resized, err := downscaleToJPEG(raw, avatarMaxDimension, avatarJPEGQuality)
	if err != nil {
		c.Error(apperror.BadRequest("Could not decode image: " + err.Error()))
		return
	}

	key := fmt.Sprintf("avatars/%s/%d.jpg", userID, time.Now().UnixNano())
	url, err := h.storage.PutObject(c.Request.Context(), key, resized, "image/jpeg")
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	if err := h.authUC.UpdateAvatar(c.Request.Context(), userID, url); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Avatar updated", gin.H{"url": url})
}

// downscaleToJPEG resizes the image so its longest side is at most
// maxDimension, preserving aspect ratio, and re-encodes it as JPEG.
func downscaleToJPEG(data []byte, maxDimension, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width >= height && width > maxDimension {
		newWidth = maxDimension
		newHeight = int(float64(height) * float64(maxDimension) / float64(width))
	} else if height > width && height > maxDimension {
		newHeight = maxDimension
		newWidth = int(float64(width) * float64(maxDimension) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
