package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercases", input: "John.Doe@Example.COM", want: "john.doe@example.com"},
		{name: "trims whitespace", input: "  user@example.com ", want: "user@example.com"},
		{name: "gmail dots folded", input: "j.o.h.n@gmail.com", want: "john@gmail.com"},
		{name: "trailing gmail dot folded", input: "john.@gmail.com", want: "john@gmail.com"},
		{name: "googlemail dots folded", input: "jo.hn@googlemail.com", want: "john@googlemail.com"},
		{name: "non-gmail dots kept", input: "j.o.h.n@example.com", want: "j.o.h.n@example.com"},
		{name: "missing at sign", input: "not-an-email", wantErr: true},
		{name: "missing domain", input: "user@", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEmailGmailVariantsCollide(t *testing.T) {
	a, err := NormalizeEmail("a.b.c@gmail.com")
	require.NoError(t, err)
	b, err := NormalizeEmail("abc@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSanitizePhone(t *testing.T) {
	got, err := SanitizePhone("(555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, "5551234567", got)

	_, err = SanitizePhone("12345")
	assert.Error(t, err)

	_, err = SanitizePhone("123456789012")
	assert.Error(t, err)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "&lt;script&gt;", SanitizeInput("<script>"))
	assert.Equal(t, "ab", SanitizeInput("a\x00b"))
}

func TestValidateFile(t *testing.T) {
	assert.NoError(t, ValidateFile("photo.jpg", 1024))
	assert.NoError(t, ValidateFile("photo.PNG", 1024))
	assert.Error(t, ValidateFile("photo.gif", 1024))
	assert.Error(t, ValidateFile("photo.jpg", 6*1024*1024))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "jo**@example.com", MaskEmail("john@example.com"))
	assert.Equal(t, "a***@example.com", MaskEmail("ab@example.com"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}
