// ABOUTME: Profile image storage backed by BadgerDB
// ABOUTME: Copies remote images into the local store and hands out stable public URLs
package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"
	"github.com/oklog/ulid/v2"
)

const (
	// PublicPath is the URL path under which stored avatars are served.
	PublicPath = "/storage/v1/object/public/avatars/"

	// MaxImageBytes caps a single downloaded image.
	MaxImageBytes = 10 << 20

	dataPrefix = "avatars/"
	typePrefix = "ctype/avatars/"
)

var (
	// ErrNotFound is returned by Open for unknown object names.
	ErrNotFound = errors.New("blob not found")

	// ErrTooLarge is returned when a source image exceeds MaxImageBytes.
	ErrTooLarge = errors.New("image exceeds size limit")
)

// Config controls where blobs live and how they are addressed.
type Config struct {
	// Dir is the badger directory. Empty means in-memory.
	Dir string

	// PublicURL is the externally reachable base URL, e.g. http://localhost:8080
	PublicURL string

	// HTTPClient downloads source images. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	Logger *log.Logger
}

// Store keeps image bytes in badger, keyed by object name.
type Store struct {
	db        *badger.DB
	publicURL string
	client    *http.Client
	logger    *log.Logger
}

// Open opens (or creates) the blob store.
func Open(cfg Config) (*Store, error) {
	if cfg.PublicURL == "" {
		return nil, fmt.Errorf("public URL cannot be empty")
	}

	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Store{
		db:        db,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		client:    client,
		logger:    logger.WithPrefix("blobs"),
	}, nil
}

// Close releases the badger handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// URLFor returns the public URL for an object name.
func (s *Store) URLFor(name string) string {
	return s.publicURL + PublicPath + name
}

// Owns reports whether url points into this store.
func (s *Store) Owns(url string) bool {
	return strings.HasPrefix(url, s.publicURL+PublicPath)
}

// Store downloads sourceURL and returns the stable URL of the stored copy.
// URLs already owned by the store are returned unchanged.
func (s *Store) Store(ctx context.Context, sourceURL string) (string, error) {
	if s.Owns(sourceURL) {
		return sourceURL, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid image URL: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", ErrTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}

	name := ulid.Make().String() + ".jpg"
	if err := s.Put(name, data, contentType); err != nil {
		return "", err
	}

	url := s.URLFor(name)
	s.logger.Debug("stored image", "source", sourceURL, "url", url, "bytes", len(data))
	return url, nil
}

// Put writes raw bytes under name.
func (s *Store) Put(name string, data []byte, contentType string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(dataPrefix+name), data); err != nil {
			return err
		}
		return txn.Set([]byte(typePrefix+name), []byte(contentType))
	})
	if err != nil {
		return fmt.Errorf("failed to store image: %w", err)
	}
	return nil
}

// Open returns the stored bytes and content type for name.
func (s *Store) Open(name string) ([]byte, string, error) {
	var data []byte
	var contentType string

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(dataPrefix + name))
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}

		item, err = txn.Get([]byte(typePrefix + name))
		if err != nil {
			return err
		}
		ct, err := item.ValueCopy(nil)
		contentType = string(ct)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return data, contentType, nil
}

// Delete removes the object behind url. URLs this store does not own are ignored.
func (s *Store) Delete(_ context.Context, url string) error {
	if !s.Owns(url) {
		return nil
	}

	name := strings.TrimPrefix(url, s.publicURL+PublicPath)
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(dataPrefix + name)); err != nil {
			return err
		}
		return txn.Delete([]byte(typePrefix + name))
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	s.logger.Debug("deleted image", "url", url)
	return nil
}

// Names lists every stored object name.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(dataPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, strings.TrimPrefix(key, dataPrefix))
		}
		return nil
	})
	return names, err
}

// Prune deletes every stored object whose URL is not in keep and returns how many went.
func (s *Store) Prune(ctx context.Context, keep map[string]bool) (int, error) {
	names, err := s.Names()
	if err != nil {
		return 0, fmt.Errorf("failed to list images: %w", err)
	}

	removed := 0
	for _, name := range names {
		url := s.URLFor(name)
		if keep[url] {
			continue
		}
		if err := s.Delete(ctx, url); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
