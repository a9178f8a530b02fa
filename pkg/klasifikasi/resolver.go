// Package klasifikasi resolves classification codes to their retention rules.
// Legacy codes are aliases: resolving one yields the data of the current code
// that replaced it.
package klasifikasi

import (
	"errors"
	"strings"
	"sync"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
)

var ErrNotFound = errors.New("classification not found")

type Info struct {
	Code             string `json:"kode"`
	Label            string `json:"jenis_arsip"`
	ActiveYears      int    `json:"retensi_aktif"`
	InactiveYears    int    `json:"retensi_inaktif"`
	FinalDisposition string `json:"nasib_akhir"`
}

// BaseCode drops everything after the first "/" ("045/IV" -> "045").
func BaseCode(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.Index(code, "/"); i >= 0 {
		code = code[:i]
	}
	return strings.TrimSpace(code)
}

// Resolver caches successful lookups. Misses are not cached so that newly
// added classifications are picked up.
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]*Info
	stor  stor.ClassificationStor
}

func NewResolver(classificationStor stor.ClassificationStor) *Resolver {
	return &Resolver{
		cache: make(map[string]*Info),
		stor:  classificationStor,
	}
}

// Resolve returns ErrNotFound when neither the current nor the legacy table
// knows the base code. Other errors come from the store.
func (r *Resolver) Resolve(code string) (*Info, error) {
	base := BaseCode(code)
	if base == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	info, ok := r.cache[base]
	r.mu.RUnlock()
	if ok {
		return info, nil
	}

	info, err := r.lookup(base)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[base] = info
	r.mu.Unlock()

	return info, nil
}

func (r *Resolver) lookup(base string) (*Info, error) {
	c, err := r.stor.GetClassificationByCode(base)
	switch {
	case err == nil:
		return toInfo(c), nil
	case !stor.IsRecordNotFound(err):
		return nil, err
	}

	legacy, err := r.stor.GetLegacyClassificationByCode(base)
	switch {
	case stor.IsRecordNotFound(err):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}

	c, err = r.stor.GetClassificationByCode(BaseCode(legacy.CurrentCode))
	switch {
	case stor.IsRecordNotFound(err):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}

	return toInfo(c), nil
}

// Forget drops a cached entry, for use after classification edits.
func (r *Resolver) Forget(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, BaseCode(code))
}

func toInfo(c *arsipmodel.Classification) *Info {
	return &Info{
		Code:             c.Code,
		Label:            c.Label,
		ActiveYears:      c.ActiveYears,
		InactiveYears:    c.InactiveYears,
		FinalDisposition: c.FinalDisposition,
	}
}
