package cache

import (
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Storage keeps JSON values in files named after a hash key.
type Storage struct {
	dir     string
	expires time.Duration

	savingLock sync.Mutex
	saving     map[string]struct{}
}

// NewStorage creates dir when missing. expires 0 keeps entries forever.
func NewStorage(dir string, expires time.Duration) *Storage {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		sentry.CaptureException(err)
		fmt.Printf("%+v\n", errors.WithStack(err))
	}

	return &Storage{
		dir:     dir,
		expires: expires,
		saving:  make(map[string]struct{}, 32),
	}
}

func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Key renders the hash as a file name.
func Key(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// 저장 중인 파일은 읽지 않음
func (s *Storage) lock(key string) bool {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	_, ok := s.saving[key]
	if !ok {
		s.saving[key] = struct{}{}
	}
	return !ok
}

func (s *Storage) unlock(key string) {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	delete(s.saving, key)
}

func (s *Storage) isSaving(key string) bool {
	s.savingLock.Lock()
	defer s.savingLock.Unlock()

	_, ok := s.saving[key]
	return ok
}

func (s *Storage) Save(h hash.Hash, v interface{}) bool {
	return s.SaveKey(Key(h), v)
}

func (s *Storage) Load(h hash.Hash, v interface{}) bool {
	return s.LoadKey(Key(h), v)
}

func (s *Storage) SaveKey(key string, v interface{}) bool {
	if !s.lock(key) {
		return false
	}
	defer s.unlock(key)

	fsPath := s.path(key)
	tmpPath := fsPath + ".tmp"

	fs, err := os.Create(tmpPath)
	if err != nil {
		sentry.CaptureException(err)
		fmt.Printf("%+v\n", errors.WithStack(err))
		return false
	}

	err = jsoniter.NewEncoder(fs).Encode(v)
	fs.Close()
	if err != nil {
		sentry.CaptureException(err)
		fmt.Printf("%+v\n", errors.WithStack(err))
		os.Remove(tmpPath)
		return false
	}

	err = os.Rename(tmpPath, fsPath)
	if err != nil {
		sentry.CaptureException(err)
		fmt.Printf("%+v\n", errors.WithStack(err))
		os.Remove(tmpPath)
		return false
	}

	return true
}

func (s *Storage) LoadKey(key string, v interface{}) bool {
	if s.isSaving(key) {
		return false
	}

	fsPath := s.path(key)

	if s.expires > 0 {
		fi, err := os.Stat(fsPath)
		if err != nil {
			return false
		}
		if time.Since(fi.ModTime()) > s.expires {
			os.Remove(fsPath)
			return false
		}
	}

	fs, err := os.Open(fsPath)
	if err != nil {
		return false
	}
	defer fs.Close()

	err = jsoniter.NewDecoder(fs).Decode(v)
	if err != nil {
		sentry.CaptureException(err)
		fmt.Printf("%+v\n", errors.WithStack(err))
		return false
	}
	return true
}

// Remove drops one entry.
func (s *Storage) Remove(h hash.Hash) {
	os.Remove(s.path(Key(h)))
}
