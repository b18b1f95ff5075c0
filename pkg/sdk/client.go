package doccat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/doccat/internal/db"
	dbRedis "github.com/kailas-cloud/doccat/internal/db/redis"
	"github.com/kailas-cloud/doccat/internal/domain"
	domtype "github.com/kailas-cloud/doccat/internal/domain/doctype"
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
	domrel "github.com/kailas-cloud/doccat/internal/domain/relations"
	doctyperepo "github.com/kailas-cloud/doccat/internal/repository/doctype"
	documentrepo "github.com/kailas-cloud/doccat/internal/repository/document"
	labelrepo "github.com/kailas-cloud/doccat/internal/repository/label"
	doctypeuc "github.com/kailas-cloud/doccat/internal/usecase/doctype"
	documentuc "github.com/kailas-cloud/doccat/internal/usecase/document"
	labeluc "github.com/kailas-cloud/doccat/internal/usecase/label"
	relationsuc "github.com/kailas-cloud/doccat/internal/usecase/relations"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the usecase layer.
type documentUseCase interface {
	Upsert(ctx context.Context, inputs []documentuc.Input) ([]domdoc.Document, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	DeleteByIDs(ctx context.Context, ids []string) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

type labelUseCase interface {
	GetOrCreate(ctx context.Context, pairs []domlabel.Pair) ([]domlabel.Label, error)
	List(ctx context.Context) ([]domlabel.Label, error)
	Update(ctx context.Context, entries []labeluc.UpdateEntry) ([]domlabel.Label, error)
	Delete(ctx context.Context, id string) (domlabel.Label, error)
}

type typeUseCase interface {
	GetOrCreate(ctx context.Context, names []string) ([]domtype.DocumentType, error)
	List(ctx context.Context, offset, limit int) ([]domtype.DocumentType, int, error)
	Rename(ctx context.Context, entries []doctypeuc.RenameEntry) ([]domtype.DocumentType, error)
	Delete(ctx context.Context, id string) (domtype.DocumentType, error)
}

type relationsUseCase interface {
	Search(ctx context.Context, documentID string, pairs []domlabel.Pair, byType bool) (domrel.Report, error)
}

// Client is the doccat SDK entry point.
type Client struct {
	store        db.Store
	docSvc       documentUseCase
	labelSvc     labelUseCase
	typeSvc      typeUseCase
	relSvc       relationsUseCase
	maxBatchSize int
	obs          *observer
}

// New creates a doccat Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		defaultPageSize: 100,
		maxPageSize:     1000,
		maxBatchSize:    1000,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("doccat: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("doccat: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("doccat: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	if cfg.keyPrefix != "" {
		domain.KeyPrefix = cfg.keyPrefix
	}

	labelSvc := labeluc.New(labelrepo.New(store))
	typeSvc := doctypeuc.New(doctyperepo.New(store), doctypeuc.Pagination{
		DefaultLimit: cfg.defaultPageSize,
		MaxLimit:     cfg.maxPageSize,
	})
	docSvc := documentuc.New(documentrepo.New(store), labelSvc, typeSvc)
	relSvc := relationsuc.New(docSvc, labelSvc)

	return &Client{
		store:        store,
		docSvc:       docSvc,
		labelSvc:     labelSvc,
		typeSvc:      typeSvc,
		relSvc:       relSvc,
		maxBatchSize: cfg.maxBatchSize,
		obs:          obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Documents returns the document service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{
		docSvc:       c.docSvc,
		relSvc:       c.relSvc,
		maxBatchSize: c.maxBatchSize,
		obs:          c.obs,
	}
}

// Labels returns the label management service.
func (c *Client) Labels() *LabelService {
	return &LabelService{svc: c.labelSvc, obs: c.obs}
}

// DocumentTypes returns the document type management service.
func (c *Client) DocumentTypes() *TypeService {
	return &TypeService{svc: c.typeSvc, obs: c.obs}
}
