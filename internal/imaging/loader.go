package imaging

import (
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultCacheEntries bounds an ImageCache created by NewImageCache.
const DefaultCacheEntries = 16

// ImageCache keeps decoded diagram images keyed by path.
//
// In server mode the edge_mask and pathway_extract tools are often called
// one after the other on the same diagram; the cache lets the second call
// skip the decode. An entry is only reused while the file's size and
// modification time are unchanged, so a rewritten diagram is always decoded
// again. ImageCache is safe for concurrent use.
//
// At most maxEntries images are held; loading a new path beyond that drops
// the least recently loaded one.
type ImageCache struct {
	mu         sync.RWMutex
	images     map[string]*cacheEntry
	maxEntries int
	seq        uint64
}

type cacheEntry struct {
	img     image.Image
	modTime time.Time
	size    int64
	seq     uint64
}

// NewImageCache creates an empty image cache holding up to
// DefaultCacheEntries images.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images:     make(map[string]*cacheEntry),
		maxEntries: DefaultCacheEntries,
	}
}

// Load returns the decoded image at path, reusing the cached decode when the
// file has not changed since it was loaded.
//
// PNG, JPEG, GIF, TIFF and BMP are supported. EXIF orientation is applied to
// JPEG photos of printed diagrams so that text reads left to right.
//
// Different paths to the same file (relative vs absolute) are cached
// separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	c.mu.RLock()
	if e, ok := c.images[path]; ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		c.mu.RUnlock()
		return e.img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.seq++
	c.images[path] = &cacheEntry{img: img, modTime: info.ModTime(), size: info.Size(), seq: c.seq}
	c.trim()
	c.mu.Unlock()

	return img, nil
}

// trim drops the oldest entries beyond maxEntries. The write lock must be
// held.
func (c *ImageCache) trim() {
	for c.maxEntries > 0 && len(c.images) > c.maxEntries {
		var oldest string
		var oldestSeq uint64
		for p, e := range c.images {
			if oldest == "" || e.seq < oldestSeq {
				oldest, oldestSeq = p, e.seq
			}
		}
		delete(c.images, oldest)
	}
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
