//go:build darwin

package filesystem

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

func fileTimes(name string) (FileTimes, error) {
	var st unix.Stat_t
	if err := unix.Stat(name, &st); err != nil {
		return FileTimes{}, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return FileTimes{
		Birth:    time.Unix(st.Btim.Unix()),
		Modified: time.Unix(st.Mtim.Unix()),
		Accessed: time.Unix(st.Atim.Unix()),
	}, nil
}
