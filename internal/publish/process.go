package publish

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"assetsync/internal/classify"
	"assetsync/internal/fileutil"
	"assetsync/internal/logging"
	"assetsync/internal/metadata"
	"assetsync/internal/services"
	"assetsync/internal/staging"
	"assetsync/internal/variants"
)

// canonicalFormat is what JPEG sources are re-encoded to.
const canonicalFormat = "png"

// processFile publishes one staged file. Errors are returned on the Outcome and
// never abort the run.
func (p *Pipeline) processFile(ctx context.Context, file staging.StagedFile) Outcome {
	outcome := Outcome{File: file, UID: classify.Stem(file.Name), Format: file.Ext}
	fileCtx := services.WithUID(ctx, outcome.UID)
	logger := logging.WithContext(fileCtx, p.Logger)

	var err error
	if outcome.UID == "" || file.Ext == "" {
		err = services.Wrap(services.ErrValidation, "publish", "process", "missing stem or extension in "+file.Name, nil)
	} else if file.Kind == classify.KindImage {
		err = p.publishImage(fileCtx, logger, file, &outcome)
	} else {
		err = p.publishFile(fileCtx, logger, file, &outcome)
	}
	if err != nil {
		outcome.Err = err
		logging.ErrorWithContext(logger, "failed to publish file; left in staging", "file_failed",
			logging.String("path", outcome.File.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return outcome
	}

	logger.Info("published file",
		logging.String("kind", string(file.Kind)),
		logging.Int("uploads", len(outcome.Keys)),
		logging.String("metadata", outcome.Metadata),
		logging.String(logging.FieldEventType, "file_published"),
	)
	return outcome
}

func (p *Pipeline) publishImage(ctx context.Context, logger *slog.Logger, file staging.StagedFile, outcome *Outcome) error {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return services.Wrap(services.ErrIO, "publish", "read", file.Path, err)
	}
	img, err := p.Codec.Decode(data)
	if err != nil {
		return err
	}

	path, ext := file.Path, file.Ext
	if classify.IsJPEG(file.Name) {
		path, data, err = p.normalize(img, file)
		if err != nil {
			return err
		}
		ext = canonicalFormat
		outcome.File.Path = path
		outcome.Format = ext
		logger.Info("converted image to png",
			logging.String("from", file.Name),
			logging.String("to", filepath.Base(path)),
			logging.String(logging.FieldEventType, "image_converted"),
		)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return services.Wrap(services.ErrValidation, "publish", "dimensions",
			fmt.Sprintf("%s has zero dimension %dx%d", file.Name, width, height), nil)
	}
	if limit := p.Config.Pipeline.SmallImageWarnPx; limit > 0 && (width < limit || height < limit) {
		logging.WarnWithContext(logger, "image is smaller than recommended", "image_small",
			logging.Int("width", width),
			logging.Int("height", height),
			logging.Int("min_px", limit),
			logging.String(logging.FieldErrorHint, "upload a larger source if variants look blurry"),
			logging.String(logging.FieldImpact, "variants are upscaled"),
		)
	}

	uid := outcome.UID
	originalKey := p.Config.Store.ImagePrefix + uid + "." + ext
	if err := p.put(ctx, originalKey, data, ext); err != nil {
		return err
	}
	outcome.Keys = append(outcome.Keys, originalKey)

	record, err := p.Writer.WriteImage(metadata.ImageRecord{UID: uid, Width: width, Height: height, Format: ext})
	if err != nil {
		return err
	}
	outcome.Metadata = record

	for _, spec := range p.Variants.Specs() {
		key, err := p.publishVariant(ctx, logger, img, filepath.Dir(path), uid, ext, spec)
		if err != nil {
			return fmt.Errorf("variant %s: %w", spec.Name, err)
		}
		outcome.Keys = append(outcome.Keys, key)
	}

	return removeSource(path)
}

// normalize re-encodes img as PNG next to the source, removes the source, and
// returns the new path and bytes.
func (p *Pipeline) normalize(img image.Image, file staging.StagedFile) (string, []byte, error) {
	data, err := p.Codec.Encode(img, canonicalFormat)
	if err != nil {
		return "", nil, err
	}
	target := filepath.Join(filepath.Dir(file.Path), classify.Stem(file.Name)+"."+canonicalFormat)
	if err := fileutil.WriteFileAtomic(target, data, 0o644); err != nil {
		return "", nil, services.Wrap(services.ErrIO, "publish", "convert", "write "+target, err)
	}
	if target != file.Path {
		if err := os.Remove(file.Path); err != nil {
			return "", nil, services.Wrap(services.ErrIO, "publish", "convert", "remove "+file.Path, err)
		}
	}
	return target, data, nil
}

// publishVariant writes the variant next to the source, uploads it, and removes
// the local copy whatever the upload outcome.
func (p *Pipeline) publishVariant(ctx context.Context, logger *slog.Logger, img image.Image, dir, uid, ext string, spec variants.Spec) (string, error) {
	bounds := img.Bounds()
	width, height, err := variants.ComputeDimensions(bounds.Dx(), bounds.Dy(), spec.Width)
	if err != nil {
		return "", err
	}
	resized, err := p.Codec.Resize(img, width, height)
	if err != nil {
		return "", err
	}
	data, err := p.Codec.Encode(resized, ext)
	if err != nil {
		return "", err
	}

	name := variants.Key(uid, spec.Width, ext)
	local := filepath.Join(dir, name)
	if err := fileutil.WriteFileAtomic(local, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrIO, "publish", "variant", "write "+local, err)
	}
	defer func() {
		if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove local variant",
				logging.String("path", local),
				logging.Error(err),
				logging.String(logging.FieldEventType, "variant_cleanup_failed"),
			)
		}
	}()

	key := p.Config.Store.ImagePrefix + name
	if err := p.put(ctx, key, data, ext); err != nil {
		return "", err
	}
	logger.Debug("uploaded variant",
		logging.String("variant", spec.Name),
		logging.String(logging.FieldKey, key),
		logging.Int("width", width),
		logging.Int("height", height),
	)
	return key, nil
}

func (p *Pipeline) publishFile(ctx context.Context, logger *slog.Logger, file staging.StagedFile, outcome *Outcome) error {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return services.Wrap(services.ErrIO, "publish", "read", file.Path, err)
	}
	key := p.Config.Store.StaticPrefix + file.Name
	contentType := classify.DetectContentType(file.Name, data)
	if err := p.Store.Put(ctx, key, data, contentType); err != nil {
		return err
	}
	outcome.Keys = append(outcome.Keys, key)
	logger.Debug("uploaded static file", logging.String(logging.FieldKey, key), logging.String("content_type", contentType))

	record, err := p.Writer.WriteFile(metadata.FileRecord{UID: outcome.UID, Format: file.Ext})
	if err != nil {
		return err
	}
	outcome.Metadata = record
	return removeSource(file.Path)
}

func (p *Pipeline) put(ctx context.Context, key string, data []byte, ext string) error {
	return p.Store.Put(ctx, key, data, classify.ContentType(ext))
}

func removeSource(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrIO, "publish", "remove source", path, err)
	}
	return nil
}

func hintFor(err error) string {
	switch services.Kind(err) {
	case "storage":
		return "check bucket name, credentials, and network access"
	case "codec":
		return "file is not a readable image; re-export it and drop it in the inbox again"
	case "validation":
		return "rename the file or replace it with a non-empty image"
	default:
		return "check file permissions in the working directory"
	}
}
