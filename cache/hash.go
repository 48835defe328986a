package cache

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const hashFileName = "hash"

// InvalidateOn clears the storage when the content of src differs from the
// content seen by the previous call.
func (s *Storage) InvalidateOn(src fs.FS) (bool, error) {
	newHash, err := hashFS(src)
	if err != nil {
		return false, err
	}

	hashFile := filepath.Join(s.dir, hashFileName)

	b, err := os.ReadFile(hashFile)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.WithStack(err)
	}
	if len(b) == 4 && binary.BigEndian.Uint32(b) == newHash {
		return false, nil
	}

	err = os.RemoveAll(s.dir)
	if err != nil {
		return false, errors.WithStack(err)
	}
	err = os.MkdirAll(s.dir, 0700)
	if err != nil {
		return false, errors.WithStack(err)
	}

	b = make([]byte, 4)
	binary.BigEndian.PutUint32(b, newHash)
	err = os.WriteFile(hashFile, b, 0600)
	if err != nil {
		return false, errors.WithStack(err)
	}

	return true, nil
}

func hashFS(src fs.FS) (uint32, error) {
	h := fnv.New32a()

	err := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		fmt.Fprint(h, path)
		if d.IsDir() {
			return nil
		}

		f, err := src.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(h, f)
		return err
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return h.Sum32(), nil
}
