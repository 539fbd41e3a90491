package observability

import "sync"

type observe struct {
	Kind   string
	Source string
	Method string
	Route  string
	Status int
	Dur    float64
	Extra  float64
	OK     bool
}

// Inmem keeps the last max observations; handy for tests and debugging
// without an external metrics backend.
type Inmem struct {
	mu     sync.Mutex
	last   []*observe
	max    int
	totals struct {
		cacheHits, cacheMiss int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v *observe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[1:]
	}
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(&observe{Kind: "lookup", Source: source, Dur: cacheMs, Extra: dbMs})
}

func (m *Inmem) ObserveCreate(dbWriteMs float64) {
	m.push(&observe{Kind: "create", Dur: dbWriteMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&observe{Kind: "http", Method: method, Route: route, Status: status, Dur: durMs})
}

func (m *Inmem) ObserveDirectoryFetch(durMs float64, ok bool) {
	m.push(&observe{Kind: "directory_fetch", Dur: durMs, OK: ok})
}

func (m *Inmem) ObservePublish(durMs float64, ok bool) {
	m.push(&observe{Kind: "publish", Dur: durMs, OK: ok})
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}
