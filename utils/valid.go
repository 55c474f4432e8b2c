// utils/valid.go
package utils

import (
	"errors"
	"html"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// gmailDomains fold dots in the local part; a@gmail.com and a.@gmail.com are
// the same mailbox.
var gmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = html.EscapeString(input)

	// Remove control characters
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	return input
}

// NormalizeEmail lowercases an email address and validates its shape. For
// Gmail mailboxes the dots in the local part are stripped as well, so the
// uniqueness checks treat dotted variants as one account.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]
	if gmailDomains[domain] {
		local = strings.ReplaceAll(local, ".", "")
		if local == "" {
			return "", errors.New("invalid email format")
		}
		email = local + "@" + domain
	}

	return email, nil
}

// SanitizePhone validates a 10-digit phone number and strips formatting.
func SanitizePhone(phone string) (string, error) {
	phone = regexp.MustCompile(`[^\d]`).ReplaceAllString(phone, "")
	if len(phone) != 10 {
		return "", errors.New("phone number must be 10 digits")
	}
	return phone, nil
}

// IsValidImageFile checks if the uploaded file is an accepted cover image
func IsValidImageFile(file *multipart.FileHeader) bool {
	allowedExtensions := []string{".jpg", ".jpeg", ".png"}

	filename := strings.ToLower(file.Filename)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}

	return false
}

// ValidateFile validates file size and type
func ValidateFile(filename string, size int64) error {
	// 5MB limit, matching the original upload policy
	if size > 5*1024*1024 {
		return errors.New("file too large")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	allowedExts := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}

	if !allowedExts[ext] {
		return errors.New("invalid file type")
	}

	return nil
}

// MaskEmail partially masks an email address for privacy
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	name := parts[0]
	domain := parts[1]

	if len(name) <= 2 {
		return name[:1] + "***@" + domain
	}

	return name[:2] + strings.Repeat("*", len(name)-2) + "@" + domain
}
