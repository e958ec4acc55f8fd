package uploads

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"setu-backend/internal/domain"
	"setu-backend/internal/pkg/apperror"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxUploadSize = 25 << 20
	// Evidence photos are downscaled to fit this box before storage.
	maxImageSide = 1920
	jpegQuality  = 82
)

var (
	ErrFileNameRequired = apperror.Invalid("file_name is required")
	ErrEmptyFile        = apperror.Invalid("File is empty")
	ErrFileTooLarge     = apperror.Invalid("File exceeds the 25MB limit")
	ErrUnsupportedFile  = apperror.Invalid("Only images, videos and PDF documents can be attached")
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// Service hands out upload targets in the submission media bucket and stores files sent through the API.
type Service struct {
	Client  Storage
	BaseURL string
	Bucket  string
}

// UploadResult is returned for a signed upload; the client PUTs the file to UploadURL
// and then submits PublicURL as evidence.
type UploadResult struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Path      string `json:"path"`
}

// StoredMedia is a file already written to storage.
type StoredMedia struct {
	URL       string           `json:"url"`
	MediaType domain.MediaType `json:"media_type"`
	Path      string           `json:"path"`
	Size      int              `json:"size"`
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

func objectPath(fileName string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("submissions/%s/%d-%s-%s", now.Format("2006/01"), now.UnixMilli(), uuid.New().String()[:8], fileName)
}

func (s *Service) publicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(s.BaseURL, "/"), s.Bucket, (&url.URL{Path: path}).EscapedPath())
}

// GetSignedUploadURL reserves a path in the media bucket and returns a signed URL to upload to it.
func (s *Service) GetSignedUploadURL(ctx context.Context, fileName string) (*UploadResult, error) {
	name := sanitizeFileName(fileName)
	if name == "" {
		return nil, ErrFileNameRequired
	}
	path := objectPath(name)

	signedURL, err := s.Client.CreateSignedUploadURL(ctx, s.Bucket, path)
	if err != nil {
		return nil, apperror.Unavailable("Media storage is unavailable", err)
	}
	return &UploadResult{
		UploadURL: signedURL,
		PublicURL: s.publicURL(path),
		Path:      path,
	}, nil
}

// Store classifies data, downscales photos and writes the file to storage.
func (s *Service) Store(ctx context.Context, fileName string, data []byte) (*StoredMedia, error) {
	name := sanitizeFileName(fileName)
	if name == "" {
		return nil, ErrFileNameRequired
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	mediaType, ok := classify(contentType)
	if !ok {
		return nil, ErrUnsupportedFile
	}
	if mediaType == domain.MediaImage {
		if optimized, err := optimizeImage(data); err == nil {
			data = optimized
			contentType = "image/jpeg"
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
		} else {
			log.Warn().Err(err).Str("file", name).Msg("image kept as uploaded")
		}
	}

	path := objectPath(name)
	if err := s.Client.Upload(ctx, s.Bucket, path, contentType, data); err != nil {
		return nil, apperror.Unavailable("Media storage is unavailable", err)
	}
	return &StoredMedia{
		URL:       s.publicURL(path),
		MediaType: mediaType,
		Path:      path,
		Size:      len(data),
	}, nil
}

func classify(contentType string) (domain.MediaType, bool) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return domain.MediaImage, true
	case strings.HasPrefix(ct, "video/"):
		return domain.MediaVideo, true
	case strings.HasPrefix(ct, "application/pdf"):
		return domain.MediaDocument, true
	}
	return "", false
}

// optimizeImage decodes a photo, applies its EXIF orientation, fits it into maxImageSide and re-encodes it as JPEG.
func optimizeImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() > maxImageSide || b.Dy() > maxImageSide {
		img = imaging.Fit(img, maxImageSide, maxImageSide, imaging.Lanczos)
	}
	return encodeJPEG(img)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
