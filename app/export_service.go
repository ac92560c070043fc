package app

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"autoficate/internal/errors"
	"autoficate/internal/media"
	"autoficate/models"
	"autoficate/ports"
)

// exportWorkers bounds the parallel page renders during an export.
const exportWorkers = 4

// ExportService handles the base image upload, the first-row preview
// and the full batch export.
type ExportService struct {
	images   ports.ImageRepository
	sets     ports.ItemSetRepository
	blobs    ports.BlobStore
	renderer ports.Renderer
}

func NewExportService(images ports.ImageRepository, sets ports.ItemSetRepository, blobs ports.BlobStore, renderer ports.Renderer) *ExportService {
	return &ExportService{images: images, sets: sets, blobs: blobs, renderer: renderer}
}

// SaveBaseImage validates and stores an uploaded base image, replacing
// the user's prior one.
func (s *ExportService) SaveBaseImage(ctx context.Context, userCode, fileName string, data []byte) (*models.ImageAsset, error) {
	if userCode == "" {
		return nil, errors.SessionMissing("user_code")
	}

	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return nil, errors.Validation("the file is not a readable png or jpeg image")
	}

	if err := s.blobs.DeletePrefix(ctx, media.Key(media.PrefixMain, userCode)); err != nil {
		return nil, errors.Storage(err.Error())
	}

	key := media.Key(media.PrefixMain, userCode, fileName)
	if err := s.blobs.Store(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, errors.Storage(err.Error())
	}

	now := time.Now().UTC()
	asset := &models.ImageAsset{
		UserCode:  userCode,
		FileName:  fileName,
		URL:       s.blobs.PublicURL(key),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.images.UpsertImage(ctx, asset); err != nil {
		return nil, err
	}
	log.Printf("[Export] stored base image %s for %s", fileName, userCode)
	return asset, nil
}

// Preview renders the first data row onto the base image and stores it
// under the preview prefix. Returns the preview URL.
func (s *ExportService) Preview(ctx context.Context, userCode string) (string, error) {
	base, asset, sets, err := s.loadRenderInputs(ctx, userCode)
	if err != nil {
		return "", err
	}

	page, err := s.renderer.RenderPage(base, sets, 0)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := s.renderer.Encode(&buf, page, "png"); err != nil {
		return "", err
	}

	key := media.Key(media.PrefixPreview, userCode, "preview.png")
	if err := s.blobs.Store(ctx, key, &buf); err != nil {
		return "", errors.Storage(err.Error())
	}

	url := s.blobs.PublicURL(key)
	asset.PreviewURL = url
	if err := s.images.UpsertImage(ctx, asset); err != nil {
		return "", err
	}
	return url, nil
}

// Export renders one page per data row, encodes them in the requested
// format and returns the zip bundle plus its download file name. Pages
// render in parallel but land in the archive ordered by row index.
func (s *ExportService) Export(ctx context.Context, userCode, userName, format string) ([]byte, string, error) {
	base, _, sets, err := s.loadRenderInputs(ctx, userCode)
	if err != nil {
		return nil, "", err
	}

	rows := 0
	for _, set := range sets {
		if len(set.Items) > rows {
			rows = len(set.Items)
		}
	}
	if rows == 0 {
		return nil, "", errors.Validation("there is no data to export")
	}

	if format == "" {
		format = "png"
	}
	ext := strings.ToLower(format)
	if ext == "jpeg" {
		ext = "jpg"
	}

	pages := make([][]byte, rows)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportWorkers)
	for row := 0; row < rows; row++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := s.renderer.RenderPage(base, sets, row)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := s.renderer.Encode(&buf, page, format); err != nil {
				return err
			}
			pages[row] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	var bundle bytes.Buffer
	zw := zip.NewWriter(&bundle)
	for row, page := range pages {
		w, err := zw.Create(fmt.Sprintf("output_%d.%s", row+1, ext))
		if err != nil {
			return nil, "", errors.Storage(err.Error())
		}
		if _, err := w.Write(page); err != nil {
			return nil, "", errors.Storage(err.Error())
		}
	}
	if err := zw.Close(); err != nil {
		return nil, "", errors.Storage(err.Error())
	}

	if err := s.images.IncrementExports(ctx, userCode); err != nil {
		log.Printf("[Export] failed to count export for %s: %v", userCode, err)
	}

	name := fmt.Sprintf("autoficate_%s_output.zip", exportUserLabel(userName, userCode))
	log.Printf("[Export] rendered %d pages (%s) for %s", rows, format, userCode)
	return bundle.Bytes(), name, nil
}

// PurgeMedia removes everything stored for a user: blobs under every
// prefix plus the image record. Runs when stale placeholder accounts
// are swept.
func (s *ExportService) PurgeMedia(ctx context.Context, userCode string) {
	for _, prefix := range []string{media.PrefixMain, media.PrefixPreview, media.PrefixExport} {
		if err := s.blobs.DeletePrefix(ctx, media.Key(prefix, userCode)); err != nil {
			log.Printf("[Export] failed to purge %s media for %s: %v", prefix, userCode, err)
		}
	}
	if err := s.images.DeleteImage(ctx, userCode); err != nil {
		log.Printf("[Export] failed to drop the image record for %s: %v", userCode, err)
	}
}

// loadRenderInputs fetches the decoded base image and every non-blank
// heading for a user.
func (s *ExportService) loadRenderInputs(ctx context.Context, userCode string) (image.Image, *models.ImageAsset, []*models.ItemSet, error) {
	if userCode == "" {
		return nil, nil, nil, errors.SessionMissing("user_code")
	}

	asset, err := s.images.GetImage(ctx, userCode)
	if err != nil {
		return nil, nil, nil, err
	}

	key := media.Key(media.PrefixMain, userCode, asset.FileName)
	ok, err := s.blobs.Exists(ctx, key)
	if err != nil {
		return nil, nil, nil, errors.Storage(err.Error())
	}
	if !ok {
		return nil, nil, nil, errors.NotFound("the stored base image is missing")
	}

	rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, nil, nil, errors.Storage(err.Error())
	}
	defer rc.Close()

	base, _, err := image.Decode(rc)
	if err != nil {
		return nil, nil, nil, errors.Render("the stored base image could not be decoded")
	}

	all, err := s.sets.ListItemSets(ctx, userCode)
	if err != nil {
		return nil, nil, nil, err
	}
	sets := make([]*models.ItemSet, 0, len(all))
	for _, set := range all {
		if set.Heading != "" {
			sets = append(sets, set)
		}
	}
	return base, asset, sets, nil
}

// exportUserLabel recovers the readable part of the username for the
// download file name: the username format is first-last-code.
func exportUserLabel(userName, userCode string) string {
	if userCode != "" && strings.Contains(userName, userCode) {
		return strings.TrimRight(strings.Split(userName, userCode)[0], "-")
	}
	if userName != "" {
		return userName
	}
	return userCode
}
