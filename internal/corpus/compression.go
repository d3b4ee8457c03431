package corpus

import (
	"os"
	"strings"
)

type compression int

const (
	compressionNone compression = iota
	compressionGzip
	compressionZstd
)

func archiveCompression(path string) compression {
	switch {
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		return compressionGzip
	case strings.HasSuffix(path, ".tar.zst"), strings.HasSuffix(path, ".tzst"):
		return compressionZstd
	default:
		return compressionNone
	}
}

func openRaw(path string) (*os.File, error) {
	return os.Open(path)
}
