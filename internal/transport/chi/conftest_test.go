package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/doccat/internal/domain"
	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
	doctypeuc "github.com/kailas-cloud/doccat/internal/usecase/doctype"
	documentuc "github.com/kailas-cloud/doccat/internal/usecase/document"
	healthuc "github.com/kailas-cloud/doccat/internal/usecase/health"
	labeluc "github.com/kailas-cloud/doccat/internal/usecase/label"
	relationsuc "github.com/kailas-cloud/doccat/internal/usecase/relations"
)

// memCatalog is an in-memory backend implementing every repository contract,
// so handler tests run the real usecase stack end to end.
type memCatalog struct {
	mu     sync.Mutex
	labels map[string]domlabel.Label       // by id
	types  map[string]domtype.DocumentType // by id
	docs   map[string]domdoc.Document      // by id
	byHash map[string]string               // hash -> doc id

	pingErr error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		labels: make(map[string]domlabel.Label),
		types:  make(map[string]domtype.DocumentType),
		docs:   make(map[string]domdoc.Document),
		byHash: make(map[string]string),
	}
}

// --- labeluc.Repository ---

func (m *memCatalog) Ensure(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domlabel.Label, 0, len(pairs))
	for _, p := range pairs {
		found := false
		for _, l := range m.labels {
			if l.Pair() == p {
				out = append(out, l)
				found = true
				break
			}
		}
		if found {
			continue
		}
		l, err := domlabel.New(p.Key, p.Value)
		if err != nil {
			return nil, err
		}
		m.labels[l.ID()] = l
		out = append(out, l)
	}
	return out, nil
}

func (m *memCatalog) List(ctx context.Context) ([]domlabel.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domlabel.Label, 0, len(m.labels))
	for _, l := range m.labels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key() != out[j].Key() {
			return out[i].Key() < out[j].Key()
		}
		return out[i].Value() < out[j].Value()
	})
	return out, nil
}

func (m *memCatalog) Update(ctx context.Context, l domlabel.Label, oldPair domlabel.Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.labels {
		if id != l.ID() && existing.Pair() == l.Pair() {
			return domain.ErrAlreadyExists
		}
	}
	m.labels[l.ID()] = l
	return nil
}

func (m *memCatalog) Delete(ctx context.Context, id string) (domlabel.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.labels[id]
	if !ok {
		return domlabel.Label{}, domain.ErrLabelNotFound
	}
	delete(m.labels, id)
	return l, nil
}

// --- doctypeuc.Repository (wrapped to avoid method name clashes) ---

type memTypes struct{ c *memCatalog }

func (m memTypes) Ensure(ctx context.Context, names []string) ([]domtype.DocumentType, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	out := make([]domtype.DocumentType, 0, len(names))
	for _, name := range names {
		found := false
		for _, dt := range m.c.types {
			if dt.Name() == name {
				out = append(out, dt)
				found = true
				break
			}
		}
		if found {
			continue
		}
		dt, err := domtype.New(name)
		if err != nil {
			return nil, err
		}
		m.c.types[dt.ID()] = dt
		out = append(out, dt)
	}
	return out, nil
}

func (m memTypes) List(ctx context.Context) ([]domtype.DocumentType, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	out := make([]domtype.DocumentType, 0, len(m.c.types))
	for _, dt := range m.c.types {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (m memTypes) Rename(ctx context.Context, dt domtype.DocumentType, oldName string) error {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	for id, existing := range m.c.types {
		if id != dt.ID() && existing.Name() == dt.Name() {
			return domain.ErrAlreadyExists
		}
	}
	m.c.types[dt.ID()] = dt
	return nil
}

func (m memTypes) Delete(ctx context.Context, id string) (domtype.DocumentType, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	dt, ok := m.c.types[id]
	if !ok {
		return domtype.DocumentType{}, domain.ErrTypeNotFound
	}
	delete(m.c.types, id)
	return dt, nil
}

// --- documentuc.Repository ---

type memDocs struct{ c *memCatalog }

func (m memDocs) SaveAll(ctx context.Context, docs []domdoc.Document, touched map[string][]string, at time.Time) error {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	for _, d := range docs {
		m.c.docs[d.ID()] = d
		m.c.byHash[d.Hash()] = d.ID()
	}
	return nil
}

func (m memDocs) Get(ctx context.Context, id string) (domdoc.Document, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	d, ok := m.c.docs[id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

func (m memDocs) FindByHashes(ctx context.Context, hashes []string) (map[string]domdoc.Document, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	out := make(map[string]domdoc.Document, len(hashes))
	for _, h := range hashes {
		if id, ok := m.c.byHash[h]; ok {
			out[h] = m.c.docs[id]
		}
	}
	return out, nil
}

func (m memDocs) List(ctx context.Context) ([]domdoc.Document, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	out := make([]domdoc.Document, 0, len(m.c.docs))
	for _, d := range m.c.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().Before(out[j].CreatedAt())
		}
		return out[i].Hash() < out[j].Hash()
	})
	return out, nil
}

func (m memDocs) Delete(ctx context.Context, ids []string) (int, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	count := 0
	for _, id := range ids {
		d, ok := m.c.docs[id]
		if !ok {
			continue
		}
		delete(m.c.docs, id)
		delete(m.c.byHash, d.Hash())
		count++
	}
	return count, nil
}

func (m memDocs) DeleteAll(ctx context.Context) (int, error) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	count := len(m.c.docs)
	m.c.docs = make(map[string]domdoc.Document)
	m.c.byHash = make(map[string]string)
	return count, nil
}

// --- healthuc.DBPinger ---

func (m *memCatalog) Ping(ctx context.Context) error {
	return m.pingErr
}

func newTestServer(t *testing.T) (*httptest.Server, *memCatalog) {
	t.Helper()

	cat := newMemCatalog()
	labelSvc := labeluc.New(cat)
	typeSvc := doctypeuc.New(memTypes{cat}, doctypeuc.Pagination{DefaultLimit: 100, MaxLimit: 1000})
	docSvc := documentuc.New(memDocs{cat}, labelSvc, typeSvc)
	relSvc := relationsuc.New(docSvc, labelSvc)
	healthSvc := healthuc.New(cat)

	srv := NewServer(docSvc, labelSvc, typeSvc, relSvc, healthSvc, zap.NewNop(), 1000)
	router := chirouter.NewRouter()
	srv.Routes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, cat
}

func doJSON(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, http.NoBody)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}
