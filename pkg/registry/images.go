package registry

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"airport_service/pkg/domain"
	"airport_service/pkg/models"

	"github.com/google/uuid"
)

const (
	airplaneUploadDir = "uploads/airplanes"
	maxImageBytes     = 10 << 20
)

var extByFormat = map[string]string{"png": ".png", "jpeg": ".jpg", "gif": ".gif"}

// UploadAirplaneImage stores an image under MEDIA_DIR and points the
// airplane at it. The payload must decode as PNG, JPEG or GIF.
func (r *Registry) UploadAirplaneImage(ctx context.Context, id uint, filename string, src io.Reader) (*models.Airplane, error) {
	airplane, err := r.GetAirplane(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(src, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, domain.Invalid("image", "The submitted file is too large.")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Invalid("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = extByFormat[format]
	}
	rel := path.Join(airplaneUploadDir, fmt.Sprintf("%s-%s%s", slugify(airplane.Name), uuid.New().String(), ext))

	dst := filepath.Join(r.mediaDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&models.Airplane{}).Where("id = ?", airplane.ID).Update("image", rel).Error
	if err != nil {
		_ = os.Remove(dst)
		return nil, err
	}
	airplane.Image = rel
	return airplane, nil
}

// slugify lowercases s and collapses every run of non-alphanumerics to "-".
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "airplane"
	}
	return out
}
