//go:build !unix

// disk_lock_other.go - no advisory locking available on this platform

package main

import "os"

func lockDiskFile(f *os.File) error {
	return nil
}
