// Package storage is the object-store boundary used for deliverable file
// attachments. The managed store is an external collaborator; LocalStore is
// the filesystem-backed dev implementation behind the same interface.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"studiopm/config"
)

type ObjectStore interface {
	Upload(data []byte, filename string, mimetype string, folder string) (string, error)
	SignedURL(key string, ttlSeconds int) (string, error)
	Delete(key string) error
}

type LocalStore struct {
	Dir string
}

func NewLocalStore() *LocalStore {
	return &LocalStore{Dir: config.UploadDir}
}

func (s *LocalStore) Upload(data []byte, filename string, mimetype string, folder string) (string, error) {
	key := filepath.Join(folder, uuid.NewString()+"-"+filepath.Base(filename))
	full := filepath.Join(s.Dir, key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return key, nil
}

// SignedURL returns a /files URL carrying an expiry and an HMAC over
// key+expiry, checked by the download handler.
func (s *LocalStore) SignedURL(key string, ttlSeconds int) (string, error) {
	exp := time.Now().Add(time.Duration(ttlSeconds) * time.Second).Unix()
	sig := Sign(key, exp)
	return fmt.Sprintf("/files/%s?exp=%d&sig=%s", key, exp, sig), nil
}

func (s *LocalStore) Delete(key string) error {
	return os.Remove(filepath.Join(s.Dir, key))
}

// Path resolves a key inside the upload dir.
func (s *LocalStore) Path(key string) string {
	return filepath.Join(s.Dir, key)
}

// Sign computes the download signature for a key/expiry pair.
func Sign(key string, exp int64) string {
	mac := hmac.New(sha256.New, config.JWTKey)
	mac.Write([]byte(key + ":" + strconv.FormatInt(exp, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature and that it has not expired.
func Verify(key string, exp int64, sig string) bool {
	if exp < time.Now().Unix() {
		return false
	}
	return hmac.Equal([]byte(Sign(key, exp)), []byte(sig))
}
