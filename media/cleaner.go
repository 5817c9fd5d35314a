package media

import (
	"context"

	"go.uber.org/zap"
)

// Cleaner performs best-effort deletion of stored objects. Failures are
// logged on its own channel and never abort the surrounding operation, so
// a record's image list can temporarily diverge from object storage.
type Cleaner struct {
	client Client
	log    *zap.Logger
}

func NewCleaner(client Client, log *zap.Logger) *Cleaner {
	return &Cleaner{client: client, log: log.Named("media-cleaner")}
}

// Discard deletes the objects behind the given public URLs, one at a
// time. Each failure is logged and skipped.
func (c *Cleaner) Discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		objectName, err := ObjectNameFromPublicURL(url)
		if err != nil {
			c.log.Warn("unparseable image url, skipping delete",
				zap.String("url", url), zap.Error(err))
			continue
		}
		if err := c.client.Delete(ctx, objectName); err != nil {
			c.log.Warn("media delete failed",
				zap.String("object", objectName), zap.Error(err))
		}
	}
}
