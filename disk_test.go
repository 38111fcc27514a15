package main

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestDiskImage(t *testing.T, pattern func(i int) byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	buf := make([]byte, 4096) // a few sectors
	for i := range buf {
		buf[i] = pattern(i)
	}
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func sendCommand(d *Disk, cmd byte, arg uint32) {
	d.WriteData(uint32(cmd))
	d.WriteData(arg >> 24)
	d.WriteData(arg >> 16 & 0xFF)
	d.WriteData(arg >> 8 & 0xFF)
	d.WriteData(arg & 0xFF)
	d.WriteData(0) // CRC byte, ignored
}

// TestDiskCMD17ReadSequence reproduces spec.md §8 scenario 5: CMD17 of
// sector 0 replies with R1=0x00, token=0xFE, then the 512-byte sector
// packed as 128 little-endian words.
func TestDiskCMD17ReadSequence(t *testing.T) {
	path := newTestDiskImage(t, func(i int) byte { return byte(i) })
	d, err := NewDisk(path)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	defer d.Close()

	sendCommand(d, 81, 0)

	got := make([]uint32, 130)
	for i := range got {
		d.WriteData(0xFF)
		got[i] = d.ReadData()
	}

	if got[0] != 0x00 {
		t.Errorf("R1 response = %#x, want 0x00", got[0])
	}
	if got[1] != 0xFE {
		t.Errorf("data token = %#x, want 0xFE", got[1])
	}
	for i := 0; i < 128; i++ {
		b0, b1, b2, b3 := byte(i*4), byte(i*4+1), byte(i*4+2), byte(i*4+3)
		want := uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
		if got[2+i] != want {
			t.Fatalf("word %d = %#x, want %#x", i, got[2+i], want)
		}
	}
}

// TestDiskReplaySectorRoundTrip reproduces spec.md §8's disk-replay law:
// write(s, v); read(s) == v, and the backing file's size is unchanged.
func TestDiskReplaySectorRoundTrip(t *testing.T) {
	path := newTestDiskImage(t, func(i int) byte { return 0 })
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	d, err := NewDisk(path)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	defer d.Close()

	// CMD24: write sector 1.
	sendCommand(d, 88, 1)
	d.WriteData(0xFF) // consume R1 response slot
	if r1 := d.ReadData(); r1 != 0 {
		t.Fatalf("CMD24 R1 = %#x, want 0", r1)
	}
	d.WriteData(254) // data token

	want := make([]uint32, 128)
	for i := range want {
		word := uint32(i) | uint32(i+1)<<8 | uint32(i+2)<<16 | uint32(i+3)<<24
		want[i] = word
		d.WriteData(word)
	}
	d.WriteData(0xFF) // CRC byte 1
	d.WriteData(0xFF) // CRC byte 2, completes the write

	// CMD17: read sector 1 back.
	sendCommand(d, 81, 1)
	got := make([]uint32, 130)
	for i := range got {
		d.WriteData(0xFF)
		got[i] = d.ReadData()
	}
	for i := 0; i < 128; i++ {
		if got[2+i] != want[i] {
			t.Fatalf("readback word %d = %#x, want %#x", i, got[2+i], want[i])
		}
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat after write: %v", err)
	}
	if after.Size() != before.Size() {
		t.Errorf("file size changed: %d -> %d", before.Size(), after.Size())
	}
}

// TestDiskUnknownCommandReturnsZero checks the default R1 branch.
func TestDiskUnknownCommandReturnsZero(t *testing.T) {
	path := newTestDiskImage(t, func(i int) byte { return 0 })
	d, err := NewDisk(path)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	defer d.Close()

	sendCommand(d, 0, 0)
	d.WriteData(0xFF)
	if got := d.ReadData(); got != 0 {
		t.Errorf("unknown command R1 = %#x, want 0", got)
	}
}

// TestDiskFilesystemMagicOffset checks that an image whose first sector
// carries the bare-filesystem magic number is addressed with the
// DiskAdr offset applied.
func TestDiskFilesystemMagicOffset(t *testing.T) {
	path := newTestDiskImage(t, func(i int) byte { return 0 })
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	buf[0], buf[1], buf[2], buf[3] = 0x8D, 0xA3, 0x1E, 0x9B // filesystemMagic, LE
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	d, err := NewDisk(path)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	defer d.Close()

	if d.offset != filesystemOffset {
		t.Errorf("offset = %d, want %d", d.offset, filesystemOffset)
	}
}
