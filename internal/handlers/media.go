package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"layerary/internal/middleware"
	"layerary/internal/models"
	"layerary/internal/storage"
	"layerary/internal/store"
)

const (
	// maxUploadSize is the maximum allowed file upload size (100 MB,
	// design sources run large).
	maxUploadSize = 100 << 20

	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 480

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps decoded size to prevent memory bombs.
	maxImagePixels = 100_000_000

	// presignExpiry is how long a presigned URL for vault files is valid.
	presignExpiry = 1 * time.Hour
)

// allowedUploadTypes defines MIME types accepted for upload. Covers the
// asset formats the library distributes.
var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
	"application/zip": true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.ms-powerpoint": true,
}

// thumbableTypes are image types that support thumbnail generation.
// GIF is excluded to preserve animation; SVG is vector.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Media groups the upload and asset-management handlers.
type Media struct {
	mediaStore    *store.MediaStore
	storageClient *storage.Client
}

// NewMedia creates a new Media handler group. storageClient may be nil
// when object storage is not configured; uploads then 503.
func NewMedia(mediaStore *store.MediaStore, storageClient *storage.Client) *Media {
	return &Media{mediaStore: mediaStore, storageClient: storageClient}
}

// List serves GET /api/admin/media.
func (m *Media) List(w http.ResponseWriter, r *http.Request) {
	items, err := m.mediaStore.List(r.Context(), 50, 0)
	if err != nil {
		slog.Error("list media failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	type mediaView struct {
		models.Media
		URL      string `json:"url"`
		ThumbURL string `json:"thumb_url,omitempty"`
	}
	views := make([]mediaView, 0, len(items))
	for _, item := range items {
		mv := mediaView{Media: item}
		if m.storageClient != nil && item.Bucket == m.storageClient.AssetBucket() {
			mv.URL = m.storageClient.AssetURL(item.ObjectKey)
			if item.ThumbKey != nil {
				mv.ThumbURL = m.storageClient.AssetURL(*item.ThumbKey)
			}
		}
		views = append(views, mv)
	}
	writeJSON(w, http.StatusOK, views)
}

// Upload handles POST /api/admin/media: multipart upload to object
// storage, thumbnail generation for raster images, and a metadata row.
// Thumbnail failures are logged and the upload still succeeds.
func (m *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if m.storageClient == nil {
		writeError(w, "Object storage is not configured.", http.StatusServiceUnavailable)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, "File too large. Maximum size is 100 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file provided.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, "File too large. Maximum size is 100 MB.", http.StatusRequestEntityTooLarge)
		return
	}

	// Sniff the real content type from the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		writeError(w, "Failed to read file.", http.StatusInternalServerError)
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	lowerName := strings.ToLower(header.Filename)
	switch {
	// DetectContentType reports xml/plain for SVGs.
	case strings.HasSuffix(lowerName, ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")):
		contentType = "image/svg+xml"
	// OOXML decks sniff as plain zip.
	case strings.HasSuffix(lowerName, ".pptx") && contentType == "application/zip":
		contentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}

	if !allowedUploadTypes[contentType] {
		writeError(w, fmt.Sprintf("File type %q is not allowed.", contentType), http.StatusBadRequest)
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, "Failed to process file.", http.StatusInternalServerError)
		return
	}

	bucket := m.storageClient.AssetBucket()
	if r.FormValue("bucket") == "vault" {
		bucket = m.storageClient.VaultBucket()
	}

	now := time.Now()
	ext := filepath.Ext(header.Filename)
	fileID := uuid.New().String()
	objectKey := fmt.Sprintf("assets/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, "Failed to read file.", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	if err := m.storageClient.Upload(ctx, bucket, objectKey, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", objectKey)
		writeError(w, "Failed to upload file.", http.StatusInternalServerError)
		return
	}

	var thumbKey *string
	if thumbableTypes[contentType] {
		thumbData, err := generateThumbnail(bytes.NewReader(fileBytes), thumbMaxWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", objectKey)
		} else if thumbData != nil {
			tk := fmt.Sprintf("assets/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
			if err := m.storageClient.Upload(ctx, bucket, tk, "image/jpeg", bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", tk)
			} else {
				thumbKey = &tk
			}
		}
	}

	created, err := m.mediaStore.Create(ctx, &models.Media{
		Filename:     fileID + ext,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(fileBytes)),
		Bucket:       bucket,
		ObjectKey:    objectKey,
		ThumbKey:     thumbKey,
		UploaderID:   sess.UserID,
	})
	if err != nil {
		slog.Error("media db insert failed", "error", err, "key", objectKey)
		writeError(w, "Failed to save file metadata.", http.StatusInternalServerError)
		return
	}

	url := m.storageClient.AssetURL(created.ObjectKey)
	var thumbURL string
	if created.ThumbKey != nil {
		thumbURL = m.storageClient.AssetURL(*created.ThumbKey)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        created.ID,
		"url":       url,
		"thumb_url": thumbURL,
		"filename":  created.OriginalName,
		"size":      created.HumanSize(),
		"type":      created.ContentType,
	})
}

// Delete removes a media item from both storage and the database.
func (m *Media) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r)
	if !ok {
		writeError(w, "invalid media id", http.StatusBadRequest)
		return
	}

	// DB first; the returned row drives object cleanup.
	deleted, err := m.mediaStore.Delete(r.Context(), id)
	if err != nil {
		slog.Error("media db delete failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if deleted == nil {
		writeError(w, "media not found", http.StatusNotFound)
		return
	}

	// Object cleanup is best-effort; an orphaned object is cheaper than
	// a dangling metadata row.
	if m.storageClient != nil {
		ctx := r.Context()
		if err := m.storageClient.Delete(ctx, deleted.Bucket, deleted.ObjectKey); err != nil {
			slog.Warn("s3 original delete failed", "error", err, "key", deleted.ObjectKey)
		}
		if deleted.ThumbKey != nil {
			if err := m.storageClient.Delete(ctx, deleted.Bucket, *deleted.ThumbKey); err != nil {
				slog.Warn("s3 thumbnail delete failed", "error", err, "key", *deleted.ThumbKey)
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// Serve redirects to the URL for a media item: asset-bucket files go to
// the direct URL, vault files get a time-limited presigned URL.
func (m *Media) Serve(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, "invalid media id", http.StatusBadRequest)
		return
	}

	media, err := m.mediaStore.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("media lookup failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if media == nil {
		writeError(w, "media not found", http.StatusNotFound)
		return
	}
	if m.storageClient == nil {
		writeError(w, "Object storage is not configured.", http.StatusServiceUnavailable)
		return
	}

	if media.Bucket == m.storageClient.AssetBucket() {
		http.Redirect(w, r, m.storageClient.AssetURL(media.ObjectKey), http.StatusFound)
		return
	}

	presigned, err := m.storageClient.PresignedURL(r.Context(), media.Bucket, media.ObjectKey, presignExpiry)
	if err != nil {
		slog.Error("presign failed", "error", err, "key", media.ObjectKey)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, presigned, http.StatusFound)
}

// generateThumbnail creates a JPEG thumbnail constrained to maxWidth
// while preserving aspect ratio. Returns nil if the image is already
// smaller than maxWidth.
func generateThumbnail(src io.Reader, maxWidth int) ([]byte, error) {
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	if imgCfg.Width <= maxWidth {
		return nil, nil
	}

	seeker, ok := src.(io.Seeker)
	if !ok {
		return nil, fmt.Errorf("source does not support seeking")
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newWidth := maxWidth
	newHeight := int(float64(bounds.Dy()) * ratio)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
