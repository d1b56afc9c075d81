package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/vkaryagin/freelance-market/internal/http/handlers/common"
	"github.com/vkaryagin/freelance-market/internal/http/response"
	"github.com/vkaryagin/freelance-market/internal/pkg/apperror"
	"github.com/vkaryagin/freelance-market/internal/storage"
)

// Разрешённые типы вложений к спорам.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// MediaHandler загрузка файлов-вложений.
type MediaHandler struct {
	storage *storage.FileStorage
}

func NewMediaHandler(storage *storage.FileStorage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// Upload POST /media/attachments.
// Тип файла проверяется по магическим байтам, а не только по расширению.
func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "поле file обязательно")
		return
	}
	if file.Size == 0 {
		response.BadRequest(c, "файл не может быть пустым")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		response.BadRequest(c, "неподдерживаемый формат файла")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		response.BadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown || !allowedMimeTypes[kind.MIME.Value] {
		response.BadRequest(c, "содержимое файла не соответствует разрешённым форматам")
		return
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		response.Error(c, err)
		return
	}

	path, size, err := h.storage.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, http.StatusCreated, "файл загружен", gin.H{
		"path": path,
		"size": size,
		"mime": kind.MIME.Value,
	})
}
