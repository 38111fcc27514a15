// pclink.go - PC/Oberon file transfer protocol over the serial port
//
// Ported from the reference pclink.c. That implementation keeps its state
// (file descriptor, mode, position counters) in package-scope globals; per
// SPEC_FULL.md §4.8/§9, it is re-architected here as an owned *PCLink value
// with no hidden singleton, constructed once by the frontend and attached
// to the machine's serial slot.

package main

import (
	"fmt"
	"os"
)

const (
	pclinkACK = 0x10
	pclinkREC = 0x21
	pclinkSND = 0x22
)

const (
	recJobName = "PCLink.REC" // e.g. echo Test.Mod > PCLink.REC
	sndJobName = "PCLink.SND"
)

// PCLink implements the Serial capability. On idle it polls two
// well-known job files on the host filesystem; finding one starts a
// transfer session.
type PCLink struct {
	dir string // directory the job files and transferred files live in

	mode uint8
	file *os.File

	txCount, rxCount int
	filenameLen      int
	fileLen          int
	filename         string
	buf              [256]byte
}

// NewPCLink creates a PCLink instance polling job files in dir.
func NewPCLink(dir string) *PCLink {
	return &PCLink{dir: dir}
}

func (p *PCLink) jobPath(name string) string {
	if p.dir == "" {
		return name
	}
	return p.dir + string(os.PathSeparator) + name
}

// getJob reads a job file's single filename line. A job file larger than
// 33 bytes or unreadable is a malformed job and is deleted (matching the
// reference's cleanup-on-failure behavior).
func (p *PCLink) getJob(jobName string) bool {
	path := p.jobPath(jobName)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	ok := false
	if info.Size() > 0 && info.Size() <= 33 {
		if data, err := os.ReadFile(path); err == nil {
			var name string
			fmt.Sscanf(string(data), "%s", &name)
			if name != "" {
				p.filename = name
				ok = true
				p.txCount = 0
				p.rxCount = 0
				p.filenameLen = len(name) + 1
			}
		}
	}
	if !ok {
		os.Remove(path)
	}
	return ok
}

// ReadStatus implements Serial: bit 1 (xmit-ready) is always set; bit 0
// (rx-ready) is set once a transfer session is active. While idle it also
// polls for a new job.
func (p *PCLink) ReadStatus() uint32 {
	if p.mode == 0 {
		if p.getJob(recJobName) {
			if info, err := os.Stat(p.filename); err == nil && info.Size() < 0x1000000 {
				f, err := os.Open(p.filename)
				if err == nil {
					p.file = f
					p.fileLen = int(info.Size())
					p.mode = pclinkREC
				}
			}
			if p.mode == 0 {
				os.Remove(p.jobPath(recJobName))
			}
		} else if p.getJob(sndJobName) {
			f, err := os.OpenFile(p.filename, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
			if err == nil {
				p.file = f
				p.fileLen = -1
				p.mode = pclinkSND
			}
			if p.mode == 0 {
				os.Remove(p.jobPath(sndJobName))
			}
		}
	}

	status := uint32(2)
	if p.mode != 0 {
		status |= 1
	}
	return status
}

// ReadData implements Serial: emits the mode byte, then the filename
// (NUL-terminated), then a length-prefixed chunked file (REC) or ACK
// frames (SND).
func (p *PCLink) ReadData() uint32 {
	var ch byte

	if p.mode != 0 {
		switch {
		case p.rxCount == 0:
			ch = p.mode
		case p.rxCount < p.filenameLen+1:
			idx := p.rxCount - 1
			if idx < len(p.filename) {
				ch = p.filename[idx]
			}
		case p.mode == pclinkSND:
			ch = pclinkACK
			if p.fileLen == 0 {
				p.endSession(sndJobName)
			}
		default:
			pos := (p.rxCount - p.filenameLen - 1) % 256
			if pos == 0 || p.fileLen == 0 {
				if p.fileLen > 255 {
					ch = 255
				} else {
					ch = byte(p.fileLen)
					if p.fileLen == 0 {
						p.endSession(recJobName)
					}
				}
			} else {
				var b [1]byte
				n, _ := p.file.Read(b[:])
				if n == 1 {
					ch = b[0]
				}
				p.fileLen--
			}
		}
	}

	p.rxCount++
	return uint32(ch)
}

// WriteData implements Serial: the guest ACKs the mode byte, then either
// streams SND chunks (256-byte blocks with a leading length byte) back or
// simply advances the REC chunk counter.
func (p *PCLink) WriteData(value uint32) {
	if p.mode != 0 {
		switch {
		case p.txCount == 0:
			if value != pclinkACK {
				p.abortSession()
			}
		case p.mode == pclinkSND:
			pos := (p.txCount - 1) % 256
			p.buf[pos] = byte(value)
			lim := int(p.buf[0])
			if pos == lim {
				p.file.Write(p.buf[1 : 1+lim])
				if lim < 255 {
					p.fileLen = 0
					p.file.Close()
					p.file = nil
				}
			}
		}
	}
	p.txCount++
}

func (p *PCLink) endSession(jobName string) {
	p.mode = 0
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	os.Remove(p.jobPath(jobName))
}

func (p *PCLink) abortSession() {
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	if p.mode == pclinkSND {
		os.Remove(p.filename) // file incomplete, delete what we created
		os.Remove(p.jobPath(sndJobName))
	} else {
		os.Remove(p.jobPath(recJobName))
	}
	p.mode = 0
}
