package upload

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func uploadRules() Rules {
	return Rules{
		MaxSize:       1 << 20,
		AllowedTypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
		CheckDeclared: true,
	}
}

func TestValidator_AcceptsPNG(t *testing.T) {
	v := NewValidator(uploadRules())

	mime, err := v.Validate(File{Name: "a.png", DeclaredType: "image/png", Data: pngBytes(t)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
}

func TestValidator_Rejections(t *testing.T) {
	img := pngBytes(t)
	withMarker := append(append([]byte{}, img[:32]...), []byte("<?php system($_GET['c']); ?>")...)
	withMarker = append(withMarker, img[32:]...)

	tests := []struct {
		name string
		file File
		want error
	}{
		{"declared type not allowed", File{Name: "a.gif", DeclaredType: "image/gif", Data: img}, ErrUnsupportedType},
		{"declared image but text inside", File{Name: "a.png", DeclaredType: "image/png", Data: []byte("hello world")}, ErrTypeMismatch},
		{"php after png header", File{Name: "a.png", DeclaredType: "image/png", Data: withMarker}, ErrDangerousContent},
		{"too large", File{Name: "a.png", DeclaredType: "image/png", Data: make([]byte, 2<<20)}, ErrFileTooLarge},
	}

	v := NewValidator(uploadRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.file)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidator_Extensions(t *testing.T) {
	v := NewValidator(Rules{
		MaxSize:      1 << 20,
		AllowedTypes: []string{"image/png", "image/jpeg", "image/gif", "image/webp"},
		Extensions:   []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	})

	_, err := v.Validate(File{Name: "photo.PNG", Data: pngBytes(t)})
	assert.NoError(t, err, "extension match is case-insensitive")

	_, err = v.Validate(File{Name: "photo.bmp", Data: pngBytes(t)})
	assert.ErrorIs(t, err, ErrExtensionNotAllow)
}

func TestContainsSuspiciousContent(t *testing.T) {
	assert.True(t, ContainsSuspiciousContent([]byte("abc<script>alert(1)</script>")))
	assert.True(t, ContainsSuspiciousContent([]byte("<%= 1 %>")))
	assert.False(t, ContainsSuspiciousContent([]byte("plain")))

	late := append(bytes.Repeat([]byte{'a'}, SniffLength), []byte("<?php")...)
	assert.False(t, ContainsSuspiciousContent(late), "only the first KB is inspected")
}
