//go:build unix

// disk_lock_unix.go - advisory exclusive file lock for the disk image

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

func lockDiskFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}
