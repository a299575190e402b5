package models

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrImageNotFound = errors.New("image not found")

// StoredImage is an upload as received, plus header metadata.
type StoredImage struct {
	ID          string
	Data        []byte
	ContentType string
	Format      string
	Width       int
	Height      int
	UploadedAt  time.Time
}

// ImageRepository maps opaque upload ids to raw bytes for the process
// lifetime. With maxImages > 0 the oldest upload is evicted first.
type ImageRepository struct {
	mu        sync.RWMutex
	images    map[string]*StoredImage
	order     []string
	maxImages int
	now       func() time.Time
}

func NewImageRepository(maxImages int) *ImageRepository {
	return &ImageRepository{
		images:    make(map[string]*StoredImage),
		maxImages: maxImages,
		now:       time.Now,
	}
}

// Put stores img under a fresh id and returns the stored copy. The ID and
// UploadedAt fields of img are ignored.
func (r *ImageRepository) Put(img StoredImage) *StoredImage {
	img.ID = uuid.NewString()
	img.UploadedAt = r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.images[img.ID] = &img
	r.order = append(r.order, img.ID)

	for r.maxImages > 0 && len(r.images) > r.maxImages {
		r.evictOldestLocked()
	}

	return &img
}

func (r *ImageRepository) Get(id string) (*StoredImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, exists := r.images[id]
	if !exists {
		return nil, ErrImageNotFound
	}
	return img, nil
}

func (r *ImageRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.images[id]; !exists {
		return ErrImageNotFound
	}

	delete(r.images, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ImageRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images)
}

// Bytes returns the total size of stored uploads.
func (r *ImageRepository) Bytes() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int64
	for _, img := range r.images {
		total += int64(len(img.Data))
	}
	return total
}

func (r *ImageRepository) evictOldestLocked() {
	if len(r.order) == 0 {
		return
	}
	oldest := r.order[0]
	r.order = r.order[1:]
	delete(r.images, oldest)
}
