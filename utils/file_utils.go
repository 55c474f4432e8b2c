// utils/file_utils.go
package utils

import (
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Directory for visa cover images
	visaImageDir = "visas"
	// Cover images wider than this are scaled down
	maxImageWidth = 1200
)

// InitializeStorage creates necessary directories for file storage
func InitializeStorage() error {
	if err := os.MkdirAll(filepath.Join(uploadBaseDir, visaImageDir), 0755); err != nil {
		return fmt.Errorf("failed to create uploads directory: %v", err)
	}
	return nil
}

// SaveVisaImage stores an uploaded cover image under uploads/visas with a
// unique name, scaling it to the width limit. Returns the public URL path and
// the filesystem path used for later cleanup.
func SaveVisaImage(file *multipart.FileHeader) (coverURL string, imagePath string, err error) {
	if err := ValidateFile(file.Filename, file.Size); err != nil {
		return "", "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", "", fmt.Errorf("invalid image: %v", err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	if err := InitializeStorage(); err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := fmt.Sprintf("visa-%s%s", uuid.NewString(), ext)
	imagePath = filepath.Join(uploadBaseDir, visaImageDir, filename)

	if err := imaging.Save(img, imagePath); err != nil {
		return "", "", fmt.Errorf("failed to save image: %v", err)
	}

	coverURL = "/" + filepath.ToSlash(imagePath)
	return coverURL, imagePath, nil
}

// DeleteFileQuietly removes a stored file, logging failures instead of
// returning them. Used for best-effort image cleanup.
func DeleteFileQuietly(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to delete file %s: %v", path, err)
	}
}
