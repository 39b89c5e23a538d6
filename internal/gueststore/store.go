package gueststore

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
)

var (
	assetsBucket  = []byte("guest_assets")
	sessionBucket = []byte("guest_session")
)

// sessionKey is the single key in sessionBucket; at most one guest session
// exists per store.
var sessionKey = []byte("current")

const (
	// fileMode sets permissions so owner can read and write
	fileMode = 0600

	openTimeout = 1 * time.Second
)

// Store is an embedded, file-backed store for guest assets and the guest
// session. Mutating cleanup operations are best-effort: failures are logged,
// never returned, so a broken sweep can not block a caller.
type Store struct {
	logger   *zap.Logger
	db       *bolt.DB
	assetTTL time.Duration
}

// Open opens or creates the bolt database at path. assetTTL <= 0 falls back
// to domain.GuestAssetTTL.
func Open(logger *zap.Logger, path string, assetTTL time.Duration) (*Store, error) {
	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, &domain.StorageError{Op: "open", Err: err}
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(assetsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &domain.StorageError{Op: "init", Err: err}
	}

	if assetTTL <= 0 {
		assetTTL = domain.GuestAssetTTL
	}

	return &Store{
		logger:   logger,
		db:       db,
		assetTTL: assetTTL,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAsset stores a freshly generated artifact and returns its ID. The ID
// embeds the creation time in milliseconds plus a random suffix; collisions
// are treated as negligible rather than prevented.
func (s *Store) SaveAsset(payload []byte, prompt, category, aspectRatio string) (string, error) {
	now := time.Now()
	asset := domain.GuestAsset{
		ID:          newAssetID(now),
		Payload:     payload,
		Prompt:      prompt,
		Category:    category,
		AspectRatio: aspectRatio,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.assetTTL),
	}

	if err := s.PutAsset(asset); err != nil {
		return "", err
	}
	return asset.ID, nil
}

// PutAsset stores a fully formed record under its own ID. SaveAsset is the
// normal entry point for the generation flow.
func (s *Store) PutAsset(asset domain.GuestAsset) error {
	data, err := json.Marshal(asset)
	if err != nil {
		return &domain.StorageError{Op: "encode", Err: err}
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(assetsBucket).Put([]byte(asset.ID), data)
	})
	if err != nil {
		return &domain.StorageError{Op: "put", Err: err}
	}
	return nil
}

// GetAsset returns a single record, expired or not. Returns
// domain.ErrAssetNotFound when the key is absent.
func (s *Store) GetAsset(id string) (*domain.GuestAsset, error) {
	var asset *domain.GuestAsset
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(assetsBucket).Get([]byte(id))
		if data == nil {
			return domain.ErrAssetNotFound
		}
		asset = &domain.GuestAsset{}
		return json.Unmarshal(data, asset)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			return nil, err
		}
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	return asset, nil
}

// ListActive scans every stored asset in key order. Expired entries are
// deleted as a side effect and excluded; entries already marked transferred
// are excluded but left for their pending delete. Errors are logged and an
// empty slice returned, since the caller treats the store as best-effort.
func (s *Store) ListActive() []domain.GuestAsset {
	now := time.Now()
	var active []domain.GuestAsset

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(assetsBucket)
		var expired [][]byte

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var asset domain.GuestAsset
			if err := json.Unmarshal(v, &asset); err != nil {
				s.logger.Warn("dropping undecodable guest asset",
					zap.String("id", string(k)), zap.Error(err))
				expired = append(expired, append([]byte(nil), k...))
				continue
			}
			if asset.Expired(now) {
				expired = append(expired, append([]byte(nil), k...))
				continue
			}
			if asset.Transferred {
				continue
			}
			active = append(active, asset)
		}

		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("guest asset scan failed", zap.Error(err))
		return nil
	}
	return active
}

// MarkTransferred flips the transferred flag on a record. Idempotent; a
// missing key is a no-op.
func (s *Store) MarkTransferred(id string) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(assetsBucket)
		data := bucket.Get([]byte(id))
		if data == nil {
			return nil
		}
		var asset domain.GuestAsset
		if err := json.Unmarshal(data, &asset); err != nil {
			return err
		}
		if asset.Transferred {
			return nil
		}
		asset.Transferred = true
		updated, err := json.Marshal(asset)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), updated)
	})
	if err != nil {
		s.logger.Warn("failed to mark guest asset transferred",
			zap.String("id", id), zap.Error(err))
	}
}

// DeleteAsset removes a record. Idempotent; a missing key is a no-op.
func (s *Store) DeleteAsset(id string) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(assetsBucket).Delete([]byte(id))
	})
	if err != nil {
		s.logger.Warn("failed to delete guest asset",
			zap.String("id", id), zap.Error(err))
	}
}

// PurgeExpired deletes only entries past their expiry, independent of
// ListActive's inline sweep.
func (s *Store) PurgeExpired() {
	now := time.Now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(assetsBucket)
		var expired [][]byte

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var asset domain.GuestAsset
			if err := json.Unmarshal(v, &asset); err != nil || asset.Expired(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("guest asset expiry sweep failed", zap.Error(err))
	}
}

// PurgeAll deletes every asset, used on sign-out or explicit session clear.
func (s *Store) PurgeAll() {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(assetsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(assetsBucket)
		return err
	})
	if err != nil {
		s.logger.Warn("failed to purge guest assets", zap.Error(err))
	}
}

// GetSession returns the persisted guest session, or nil when none is stored.
func (s *Store) GetSession() (*domain.GuestSession, error) {
	var session *domain.GuestSession
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(sessionBucket).Get(sessionKey)
		if data == nil {
			return nil
		}
		session = &domain.GuestSession{}
		return json.Unmarshal(data, session)
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "get session", Err: err}
	}
	return session, nil
}

func (s *Store) PutSession(session domain.GuestSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return &domain.StorageError{Op: "encode session", Err: err}
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(sessionKey, data)
	})
	if err != nil {
		return &domain.StorageError{Op: "put session", Err: err}
	}
	return nil
}

// ClearSession deletes the persisted session record. Idempotent.
func (s *Store) ClearSession() {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(sessionKey)
	})
	if err != nil {
		s.logger.Warn("failed to clear guest session", zap.Error(err))
	}
}

func newAssetID(now time.Time) string {
	return fmt.Sprintf("guest_%d_%s", now.UnixMilli(), randHex(4))
}

func randHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
