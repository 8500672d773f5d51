package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"reco-api-go/logcolors"
)

const bucketName = "cache"

// PersistentCache wraps BoltDB with an in-memory cache for fast access
type PersistentCache struct {
	db                 *bolt.DB
	memCache           sync.Map
	dbPath             string
	backupPath         string
	compressionEnabled bool
}

// CacheEntry represents a cached value (can be compressed).
// ExpiresAt is a Unix timestamp; zero means the entry never expires.
type CacheEntry struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

func (e CacheEntry) expired() bool {
	return e.ExpiresAt != 0 && time.Now().Unix() > e.ExpiresAt
}

// NewPersistentCache creates a new persistent cache
func NewPersistentCache(dbPath string, backupPath string, compressionEnabled bool) (*PersistentCache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %v", err)
	}
	if err := os.MkdirAll(backupPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %v", err)
	}

	if info, err := os.Stat(dbPath); err == nil {
		log.Infof("%s Found existing database file at: %s (size: %d bytes)", logcolors.LogCacheInit, dbPath, info.Size())
	} else {
		log.Infof("%s Creating new database file at: %s", logcolors.LogCacheInit, dbPath)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %v", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %v", err)
	}

	pc := &PersistentCache{
		db:                 db,
		dbPath:             dbPath,
		backupPath:         backupPath,
		compressionEnabled: compressionEnabled,
	}

	if err := pc.loadToMemory(); err != nil {
		log.Warnf("%s Failed to preload cache to memory: %v", logcolors.LogCache, err)
	}

	log.Infof("%s Persistent cache initialized at %s (compression: %v)", logcolors.LogCache, dbPath, compressionEnabled)
	return pc, nil
}

// loadToMemory loads all non-expired cache entries from disk to memory
func (pc *PersistentCache) loadToMemory() error {
	count := 0
	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}

		return b.ForEach(func(k, v []byte) error {
			var entry CacheEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				log.Warnf("%s Failed to unmarshal cache entry for key %s: %v", logcolors.LogCache, string(k), err)
				return nil // Continue to next entry
			}
			if entry.expired() {
				return nil
			}
			pc.memCache.Store(string(k), entry)
			count++
			return nil
		})
	})

	if err != nil {
		return err
	}

	log.Infof("%s Loaded %d entries from disk to memory", logcolors.LogCache, count)
	return nil
}

// Get retrieves a value from cache (checks memory first, then disk).
// Expired entries are evicted on read. Returns the decompressed value
// if compression is enabled.
func (pc *PersistentCache) Get(key string) (string, bool) {
	if v, ok := pc.memCache.Load(key); ok {
		entry := v.(CacheEntry)
		if entry.expired() {
			pc.Delete(key)
			return "", false
		}
		return pc.decode(key, entry.Value)
	}

	var entry CacheEntry
	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("key not found")
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return "", false
	}

	if entry.expired() {
		pc.Delete(key)
		return "", false
	}

	pc.memCache.Store(key, entry)
	return pc.decode(key, entry.Value)
}

func (pc *PersistentCache) decode(key, value string) (string, bool) {
	if !pc.compressionEnabled {
		return value, true
	}
	decompressed, err := decompressValue(value)
	if err != nil {
		log.Errorf("%s Error decompressing cache value for key %s: %v", logcolors.LogCache, key, err)
		return "", false
	}
	return decompressed, true
}

// Set stores a value in cache (both memory and disk) with no expiry.
func (pc *PersistentCache) Set(key, value string) error {
	return pc.SetWithTTL(key, value, 0)
}

// SetWithTTL stores a value in cache that expires after ttl.
// Compresses the value if compression is enabled.
func (pc *PersistentCache) SetWithTTL(key, value string, ttl time.Duration) error {
	finalValue := value
	if pc.compressionEnabled {
		compressed, err := compressValue(value)
		if err != nil {
			log.Errorf("%s Error compressing cache value for key %s: %v", logcolors.LogCache, key, err)
			return err
		}
		finalValue = compressed
	}

	entry := CacheEntry{Value: finalValue}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl).Unix()
	}

	pc.memCache.Store(key, entry)

	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(key), data)
	})
}

// Delete removes a key from cache
func (pc *PersistentCache) Delete(key string) error {
	pc.memCache.Delete(key)

	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(key))
	})
}

// Clear removes all entries from cache
func (pc *PersistentCache) Clear() error {
	pc.memCache.Range(func(key, value interface{}) bool {
		pc.memCache.Delete(key)
		return true
	})

	return pc.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Range iterates over all non-expired cache entries
func (pc *PersistentCache) Range(fn func(key string, entry CacheEntry) bool) {
	pc.memCache.Range(func(k, v interface{}) bool {
		entry := v.(CacheEntry)
		if entry.expired() {
			return true
		}
		return fn(k.(string), entry)
	})
}

// Stats returns cache statistics
func (pc *PersistentCache) Stats() (numKeys int, sizeInKB int) {
	pc.memCache.Range(func(k, v interface{}) bool {
		entry := v.(CacheEntry)
		numKeys++
		sizeInKB += len(k.(string)) + len(entry.Value)
		return true
	})
	sizeInKB = sizeInKB / 1024
	return
}

// Backup creates a backup of the cache database file.
// Returns the backup file path.
func (pc *PersistentCache) Backup() (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	backupFileName := fmt.Sprintf("cache_backup_%s.db", timestamp)
	backupFilePath := filepath.Join(pc.backupPath, backupFileName)

	log.Infof("%s Creating backup at: %s", logcolors.LogCacheBackup, backupFilePath)

	// Close the database temporarily to ensure all data is flushed
	if err := pc.db.Close(); err != nil {
		return "", fmt.Errorf("failed to close database for backup: %v", err)
	}

	if err := copyFile(pc.dbPath, backupFilePath); err != nil {
		// Try to reopen the database even if backup failed
		pc.reopenDatabase()
		return "", fmt.Errorf("failed to copy database file: %v", err)
	}

	if err := pc.reopenDatabase(); err != nil {
		return "", fmt.Errorf("failed to reopen database after backup: %v", err)
	}

	log.Infof("%s Backup created successfully: %s", logcolors.LogCacheBackup, backupFilePath)
	return backupFilePath, nil
}

// BackupAndClear creates a backup of the cache and then clears it
func (pc *PersistentCache) BackupAndClear() (string, error) {
	backupPath, err := pc.Backup()
	if err != nil {
		return "", fmt.Errorf("failed to create backup: %v", err)
	}

	if err := pc.Clear(); err != nil {
		return backupPath, fmt.Errorf("backup created but failed to clear cache: %v", err)
	}

	log.Infof("%s Cache cleared successfully (backup: %s)", logcolors.LogCacheClear, backupPath)
	return backupPath, nil
}

// reopenDatabase reopens the database connection
func (pc *PersistentCache) reopenDatabase() error {
	db, err := bolt.Open(pc.dbPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to reopen database: %v", err)
	}
	pc.db = db

	if err := pc.loadToMemory(); err != nil {
		log.Warnf("%s Failed to reload cache to memory: %v", logcolors.LogCache, err)
	}

	return nil
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	// Sync to ensure data is written to disk
	return destFile.Sync()
}

// Close closes the database connection
func (pc *PersistentCache) Close() error {
	if pc.db != nil {
		return pc.db.Close()
	}
	return nil
}
