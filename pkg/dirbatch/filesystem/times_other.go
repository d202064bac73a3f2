//go:build !linux && !darwin

package filesystem

import (
	"os"
)

func fileTimes(name string) (FileTimes, error) {
	info, err := os.Stat(name)
	if err != nil {
		return FileTimes{}, err
	}
	modified := info.ModTime()
	return FileTimes{Birth: modified, Modified: modified, Accessed: modified}, nil
}
