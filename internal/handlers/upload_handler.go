package handlers

import (
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	maxUploadFiles   = 5
	maxUploadSize    = 2 << 20 // 2 MiB per file
	uploadPublicPath = "/uploads"
	uploadFormField  = "files"
)

// allowed image MIME types for thumbnails.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadHandler stores uploaded thumbnail images under the public
// directory and returns their public paths, ready to be used in a
// product's thumbnails field.
type UploadHandler struct {
	publicDir string
}

// NewUploadHandler creates a new UploadHandler writing into publicDir.
func NewUploadHandler(publicDir string) *UploadHandler {
	return &UploadHandler{
		publicDir: publicDir,
	}
}

// RegisterRoutes registers the upload route with the Fiber app.
func (h *UploadHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/uploads", h.HandleUpload)
}

// HandleUpload accepts a multipart form with up to maxUploadFiles image
// files in the "files" field and responds with their public paths.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Expected a multipart form",
			"error":   err.Error(),
		})
	}

	files := form.File[uploadFormField]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("No files provided in field %q", uploadFormField),
		})
	}
	if len(files) > maxUploadFiles {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Too many files: at most %d allowed", maxUploadFiles),
		})
	}

	var paths []string
	for _, file := range files {
		path, err := h.saveFile(c, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Failed to store file",
				"error":   err.Error(),
			})
		}
		paths = append(paths, path)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"paths": paths})
}

// saveFile validates one uploaded file and writes it under the public
// uploads directory with a generated name, returning its public path.
func (h *UploadHandler) saveFile(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	if file.Size > maxUploadSize {
		return "", fmt.Errorf("file %s exceeds the %d byte limit", file.Filename, maxUploadSize)
	}

	contentType := strings.ToLower(strings.TrimSpace(file.Header.Get("Content-Type")))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("file %s has unsupported type %q; only images are accepted", file.Filename, contentType)
	}

	uploadDir := filepath.Join(h.publicDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + ext
	dest := filepath.Join(uploadDir, name)
	if err := c.SaveFile(file, dest); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", file.Filename, err)
	}

	publicPath := uploadPublicPath + "/" + name
	log.Printf("Stored upload %s as %s", file.Filename, publicPath)
	return publicPath, nil
}
