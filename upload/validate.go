package upload

import (
	"errors"
	"io/fs"
	"os"
)

// MaxSize is the exclusive upper bound on a backup file's size.
const MaxSize = 134217728

// Validate checks that path is a regular file with 0 < size < MaxSize.
func Validate(path string) (fs.FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ValidationError{Path: path, Reason: ReasonMissing, Err: err}
		}
		return nil, &ValidationError{Path: path, Reason: err.Error(), Err: err}
	}
	if !fi.Mode().IsRegular() {
		return nil, &ValidationError{Path: path, Reason: ReasonNotRegular}
	}
	switch size := fi.Size(); {
	case size <= 0:
		return nil, &ValidationError{Path: path, Size: size, Reason: ReasonTooSmall}
	case size >= MaxSize:
		return nil, &ValidationError{Path: path, Size: size, Reason: ReasonTooLarge}
	}
	return fi, nil
}
