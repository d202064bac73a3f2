//go:build linux

package filesystem

import (
	"errors"
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

func fileTimes(name string) (FileTimes, error) {
	var stx unix.Statx_t
	mask := unix.STATX_BTIME | unix.STATX_ATIME | unix.STATX_MTIME
	err := unix.Statx(unix.AT_FDCWD, name, 0, mask, &stx)
	if errors.Is(err, unix.ENOSYS) {
		return statTimes(name)
	}
	if err != nil {
		return FileTimes{}, &fs.PathError{Op: "statx", Path: name, Err: err}
	}

	times := FileTimes{
		Modified: statxTime(stx.Mtime),
		Accessed: statxTime(stx.Atime),
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		times.Birth = statxTime(stx.Btime)
	} else {
		times.Birth = times.Modified
	}
	return times, nil
}

// statTimes is used on kernels without statx; stat(2) has no birth time.
func statTimes(name string) (FileTimes, error) {
	var st unix.Stat_t
	if err := unix.Stat(name, &st); err != nil {
		return FileTimes{}, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	modified := time.Unix(st.Mtim.Unix())
	return FileTimes{
		Birth:    modified,
		Modified: modified,
		Accessed: time.Unix(st.Atim.Unix()),
	}, nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
