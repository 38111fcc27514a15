//go:build headless

// video_backend_headless.go - no-op video backend for headless/CI runs

package main

import "sync/atomic"

type HeadlessVideoOutput struct {
	started     bool
	config      DisplayConfig
	frameCount  uint64
	lastDamage  Damage
}

// NewEbitenOutput returns the headless stand-in under the headless build
// tag, so callers construct a backend the same way in both configurations.
func NewEbitenOutput() (VideoOutput, error) {
	return &HeadlessVideoOutput{}, nil
}

func (h *HeadlessVideoOutput) Start() error {
	h.started = true
	return nil
}

func (h *HeadlessVideoOutput) Stop() error {
	h.started = false
	return nil
}

func (h *HeadlessVideoOutput) Close() error {
	h.started = false
	return nil
}

func (h *HeadlessVideoOutput) IsStarted() bool {
	return h.started
}

func (h *HeadlessVideoOutput) SetDisplayConfig(config DisplayConfig) error {
	h.config = config
	return nil
}

func (h *HeadlessVideoOutput) GetDisplayConfig() DisplayConfig {
	return h.config
}

// UpdateFrame discards the pixel data but records the damage rectangle,
// which lets tests assert on what would have been redrawn.
func (h *HeadlessVideoOutput) UpdateFrame(fb []byte, fbWords, fbHeight int, damage Damage) error {
	atomic.AddUint64(&h.frameCount, 1)
	h.lastDamage = damage
	return nil
}

func (h *HeadlessVideoOutput) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}

func (h *HeadlessVideoOutput) LastDamage() Damage {
	return h.lastDamage
}
