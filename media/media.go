// Package media wraps the external image hosting service. The service
// owns object durability; this package only uploads and deletes by object
// name and maps between object names and public URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is the media-service contract: upload a body under an object
// name and get its public URL back, or delete an object by name.
type Client interface {
	Upload(ctx context.Context, objectName string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// ObjectNameFromPublicURL recovers the storage object name from a public
// URL. Supports a configured custom domain and falls back to stripping
// scheme and host.
func ObjectNameFromPublicURL(raw string) (string, error) {
	domain := strings.TrimRight(os.Getenv("R2_PUBLIC_DOMAIN"), "/")
	bucket := os.Getenv("R2_BUCKET")
	if domain != "" && strings.HasPrefix(raw, domain+"/"+bucket+"/") {
		return strings.TrimPrefix(raw, domain+"/"+bucket+"/"), nil
	}

	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(raw, prefix) {
			withoutScheme := strings.TrimPrefix(raw, prefix)
			slash := strings.Index(withoutScheme, "/")
			if slash == -1 {
				return "", fmt.Errorf("no object path in url")
			}
			return withoutScheme[slash+1:], nil
		}
	}

	return "", fmt.Errorf("not a recognised public url")
}

// UploadProductImages stores every file under products/<slug>/ and returns
// the public URLs in upload order. Any single failure aborts the batch.
func UploadProductImages(
	ctx context.Context,
	client Client,
	productSlug string,
	files []*multipart.FileHeader,
) ([]string, error) {

	urls := make([]string, 0, len(files))

	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext == "" {
			ext = ".bin"
		}
		objectName := fmt.Sprintf(
			"products/%s/%d-%s%s",
			productSlug, time.Now().UTC().Unix(), uuid.New().String(), ext,
		)

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = mime.TypeByExtension(ext)
		}
		if ct == "" {
			ct = "application/octet-stream"
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}

		url, err := client.Upload(ctx, objectName, f, ct)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}

		urls = append(urls, url)
	}

	return urls, nil
}
