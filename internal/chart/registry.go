// Package chart keeps track of live chart instances and the configurations they are built from.
package chart

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Key identifies one chart slot in a page view, e.g. "kboCorrelationChart".
type Key string

// Handle is a chart instance owned by the chart library. Destroy releases the drawing
// surface it paints on; the handle must not be used afterwards.
type Handle interface {
	Destroy() error
}

var ErrEmptyKey = errors.New("chart key is empty")

// Stats counts registry activity since creation.
type Stats struct {
	Live            int    `json:"live"`
	Registered      uint64 `json:"registered"`
	Replaced        uint64 `json:"replaced"`
	Destroyed       uint64 `json:"destroyed"`
	DestroyFailures uint64 `json:"destroy_failures"`
}

// Registry holds at most one live handle per key.
//
// A Registry is not safe for concurrent use. Its owner must serialize calls so that
// clear-before-register and destroy-before-replace keep their order.
type Registry[H interface {
	comparable
	Handle
}] struct {
	entries map[Key]H
	keys    map[H]Key
	log     *zap.Logger
	stats   Stats
}

func NewRegistry[H interface {
	comparable
	Handle
}](log *zap.Logger) *Registry[H] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry[H]{
		entries: make(map[Key]H),
		keys:    make(map[H]Key),
		log:     log.Named("chart-registry"),
	}
}

// Register stores h under key. A different handle already stored under key is destroyed
// first; if that fails the failure is logged and h replaces it anyway. A handle lives
// under one key only: registering it under a new key moves it.
func (r *Registry[H]) Register(key Key, h H) error {
	if key == "" {
		return ErrEmptyKey
	}
	if prev, ok := r.entries[key]; ok {
		if prev == h {
			return nil
		}
		r.destroy(key, prev)
		delete(r.keys, prev)
		r.stats.Replaced++
	}
	if old, ok := r.keys[h]; ok {
		delete(r.entries, old)
		r.log.Debug("chart moved", zap.String("from", string(old)), zap.String("to", string(key)))
	}
	r.entries[key] = h
	r.keys[h] = key
	r.stats.Registered++
	return nil
}

// Get returns the live handle for key.
func (r *Registry[H]) Get(key Key) (H, bool) {
	h, ok := r.entries[key]
	return h, ok
}

func (r *Registry[H]) Len() int { return len(r.entries) }

// Keys returns the registered keys in sorted order.
func (r *Registry[H]) Keys() []Key {
	keys := make([]Key, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (r *Registry[H]) Stats() Stats {
	s := r.stats
	s.Live = len(r.entries)
	return s
}

// ClearAll destroys every held handle and empties the registry. A handle that fails to
// destroy is logged and skipped; the rest are still released.
func (r *Registry[H]) ClearAll() {
	r.clear("clear")
}

// ForceClearAll has the same contract as ClearAll. It exists for manual invocation from
// debugging tools and is logged as such.
func (r *Registry[H]) ForceClearAll() {
	r.clear("force")
}

func (r *Registry[H]) clear(reason string) {
	if len(r.entries) == 0 {
		return
	}
	n := len(r.entries)
	for _, key := range r.Keys() {
		r.destroy(key, r.entries[key])
	}
	r.entries = make(map[Key]H)
	r.keys = make(map[H]Key)
	r.log.Debug("registry cleared", zap.String("reason", reason), zap.Int("charts", n))
}

func (r *Registry[H]) destroy(key Key, h H) {
	if err := safeDestroy(h); err != nil {
		r.stats.DestroyFailures++
		r.log.Warn("chart destroy failed", zap.String("key", string(key)), zap.Error(err))
		return
	}
	r.stats.Destroyed++
}

func safeDestroy(h Handle) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("destroy panicked: %v", p)
		}
	}()
	return h.Destroy()
}
