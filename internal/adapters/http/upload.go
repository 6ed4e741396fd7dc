package http

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/DrJasper1/emerson-colab/internal/app"
	"github.com/DrJasper1/emerson-colab/internal/config"
	"github.com/DrJasper1/emerson-colab/internal/domain"
)

var allowedPictureExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
}

func handleCreateRoom(c *gin.Context, cfg *config.Config, coord *app.Coordinator) {
	name := strings.TrimSpace(c.PostForm("roomName"))
	capacity, err := strconv.Atoi(c.PostForm("roomCapacity"))
	if err != nil {
		capacity = domain.DefaultCapacity
	}

	pictureRef := ""
	if file, err := c.FormFile("roomPicture"); err == nil {
		ref, err := storeRoomPicture(c, cfg, file)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("store room picture")
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		pictureRef = ref
	}

	summary := coord.CreateRoom(name, capacity, pictureRef)
	if displayName := strings.TrimSpace(c.PostForm("displayName")); displayName != "" {
		saveDisplayName(c, displayName)
	}
	c.Redirect(http.StatusFound, "/room/"+string(summary.ID))
}

// storeRoomPicture writes the uploaded file under the upload path with
// a unique sanitized name and returns the public reference.
func storeRoomPicture(c *gin.Context, cfg *config.Config, file *multipart.FileHeader) (string, error) {
	if file.Size > cfg.MaxUploadBytes {
		return "", fmt.Errorf("room picture exceeds %d bytes", cfg.MaxUploadBytes)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedPictureExts[ext]; !ok {
		return "", fmt.Errorf("room picture type %q not supported", ext)
	}

	base := sanitizeFilename(strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename)))
	name := uuid.NewString() + "-" + base + ext
	if err := c.SaveUploadedFile(file, filepath.Join(cfg.UploadPath, name)); err != nil {
		return "", err
	}
	return "/room_pictures/" + name, nil
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 50 {
		out = out[:50]
	}
	return out
}
