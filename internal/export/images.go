package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"go-feed-catalog/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNoImages = errors.New("no images to download")

const maxImageBytes = 25 << 20

var imageExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)`)

// Fetcher is the subset of the feed fetcher the bundler needs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// BundleSummary reports what ended up in an archive.
type BundleSummary struct {
	Requested int `json:"requested"`
	Written   int `json:"written"`
	Failed    int `json:"failed"`
}

// ImageBundler downloads product images and packs them into a zip with one
// folder per SKU. Individual download failures are logged and skipped.
type ImageBundler struct {
	fetcher     Fetcher
	concurrency int
	logger      *zap.Logger
}

func NewImageBundler(fetcher Fetcher, concurrency int, logger *zap.Logger) *ImageBundler {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageBundler{fetcher: fetcher, concurrency: concurrency, logger: logger}
}

// WriteZip streams the archive to w. Products without images are skipped;
// ErrNoImages is returned when none of them has any.
func (b *ImageBundler) WriteZip(ctx context.Context, w io.Writer, products []model.Product) (BundleSummary, error) {
	var summary BundleSummary
	for i := range products {
		summary.Requested += len(products[i].Images)
	}
	if summary.Requested == 0 {
		return summary, ErrNoImages
	}

	zw := zip.NewWriter(w)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i := range products {
		p := &products[i]
		folder := folderName(p.SKU)
		names := uniqueNames(p.Images)
		for j, src := range p.Images {
			entry := folder + "/" + names[j]
			g.Go(func() error {
				data, err := b.download(gctx, src)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					b.logger.Warn("skipping image", zap.String("sku", p.SKU), zap.String("url", src), zap.Error(err))
					mu.Lock()
					summary.Failed++
					mu.Unlock()
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				f, err := zw.Create(entry)
				if err != nil {
					return fmt.Errorf("failed to add %s to archive: %w", entry, err)
				}
				if _, err := f.Write(data); err != nil {
					return fmt.Errorf("failed to write %s: %w", entry, err)
				}
				summary.Written++
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := zw.Close(); err != nil {
		return summary, fmt.Errorf("failed to finish archive: %w", err)
	}
	return summary, nil
}

func (b *ImageBundler) download(ctx context.Context, src string) ([]byte, error) {
	body, err := b.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if n > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return buf.Bytes(), nil
}

// ImageFilename names an image after the last path segment of its URL
// when that looks like a file, otherwise image_<n>.<ext>.
func ImageFilename(src string, index int) string {
	if u, err := url.Parse(src); err == nil {
		segs := strings.Split(u.Path, "/")
		name := segs[len(segs)-1]
		if strings.Contains(name, ".") && name != "." && name != ".." {
			return name
		}
	}
	ext := "jpg"
	if m := imageExt.FindStringSubmatch(src); m != nil {
		ext = m[1]
	}
	return fmt.Sprintf("image_%d.%s", index+1, ext)
}

// uniqueNames resolves clashing file names inside one product folder.
func uniqueNames(images []string) []string {
	names := make([]string, len(images))
	seen := make(map[string]bool, len(images))
	for i, src := range images {
		name := ImageFilename(src, i)
		if seen[name] {
			name = fmt.Sprintf("%d_%s", i+1, name)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func folderName(sku string) string {
	r := strings.NewReplacer("/", "_", `\`, "_", "..", "_")
	return r.Replace(sku)
}
