// Package fileid implements the exclusive-create output file allocator of
// spec.md §4.8: names of the form output-r<reducer>-p<6 random digits>,
// each digit drawn from '1'..'9' (never '0'), opened with O_CREAT|O_EXCL so
// cross-process collisions are impossible to miss.
//
// Grounded on the original create_file (original_source
// apps/ri/indexer/utils/utils.c), which regenerates the random suffix and
// retries the exclusive-create loop on collision; the 9^6 suffix space
// makes an unbounded retry loop acceptable per spec.md §7.
package fileid

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
)

const (
	idLength = 6
	perm     = 0644
)

// Name formats the file name for a given reducer index and suffix; Create
// calls it with each freshly drawn random suffix.
func Name(reducerIdx uint32, suffix string) string {
	return fmt.Sprintf("output-r%06d-p%s", reducerIdx, suffix)
}

// randomSuffix returns 6 digits, each in '1'..'9'.
func randomSuffix() (string, error) {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, idLength)
	for i, b := range buf {
		out[i] = '1' + b%9
	}
	return string(out), nil
}

// Create allocates a new output file for reducerIdx under dir, retrying
// with a new random suffix on O_CREAT|O_EXCL collision. It returns the open
// writable handle and the file's base name; the caller owns both closing
// and (optionally) removing the file.
func Create(dir string, reducerIdx uint32) (*os.File, string, error) {
	for {
		suffix, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		name := Name(reducerIdx, suffix)
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return nil, "", err
		}
		return f, name, nil
	}
}
