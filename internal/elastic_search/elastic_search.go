package elastic_search

import (
	"context"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"strings"
	"sync"
	"time"
)

type Index interface {
	Enabled() bool
	Client() *elastic.Client
	Name(i Indices) string
	InstallMappings(ctx context.Context) error

	AddIndexRequest(index string, entity entity.Entity, reqAction RequestAction)
	HasRequest(entity entity.Entity) bool
	GetRequests() []Request
	GetRequest(id string) *Request
	ClearRequests()

	BatchPersist() bool
	Persist() int
}

type index struct {
	client    *elastic.Client
	cache     *cache.Cache
	network   string
	prefix    string
	refresh   string
	bulkCount int

	// persisting serialises bulk flushes between the ticker and callers.
	persisting sync.Mutex
}

type Request struct {
	Index  string
	Entity entity.Entity
	Type   RequestType
	Action RequestAction
}

type RequestType string

const (
	IndexRequest RequestType = "index"
)

type RequestAction string

const (
	NftAction RequestAction = "NftAction"
)

const (
	batchThreshold int = 250
	saveAttempts   int = 3
)

// New returns an index that buffers requests. When no hosts are configured
// the buffer is flushed without being sent anywhere.
func New(cfg config.Config) (Index, error) {
	i := &index{
		cache:     cache.New(cache.NoExpiration, 10*time.Minute),
		network:   cfg.Network,
		prefix:    cfg.Index,
		refresh:   cfg.ElasticSearch.Refresh,
		bulkCount: cfg.ElasticSearch.BulkPersistCount,
	}
	if len(cfg.ElasticSearch.Hosts) == 0 {
		zap.L().Info("ElasticSearch: No hosts configured, running buffer only")
		return i, nil
	}

	client, err := newClient(cfg.ElasticSearch)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("ElasticSearch: Failed to create client")
		return nil, err
	}
	i.client = client

	return i, nil
}

func newClient(cfg config.ElasticSearchConfig) (*elastic.Client, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(strings.Join(cfg.Hosts, ",")),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(cfg.HealthCheck),
	}

	if cfg.Debug {
		opts = append(opts, elastic.SetTraceLog(ElasticLogger{}))
	}

	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}

	return elastic.NewClient(opts...)
}

type ElasticLogger struct{}

func (ElasticLogger) Printf(format string, v ...interface{}) {
	zap.S().Debugf(format, v...)
}

func (i *index) Enabled() bool {
	return i.client != nil
}

func (i *index) Client() *elastic.Client {
	return i.client
}

func (i *index) Name(idx Indices) string {
	return idx.Get(i.network, i.prefix)
}

func (i *index) InstallMappings(ctx context.Context) error {
	if !i.Enabled() {
		return nil
	}
	zap.L().Info("ElasticSearch: Install Mappings")

	for idx, mapping := range mappings {
		if err := i.createIndex(ctx, i.Name(idx), mapping); err != nil {
			zap.L().With(zap.Error(err), zap.String("index", i.Name(idx))).Error("ElasticSearch: Failed to create index")
			return err
		}
	}

	return nil
}

func (i *index) createIndex(ctx context.Context, index string, mapping string) error {
	exists, err := i.client.IndexExists(index).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	createIndex, err := i.client.CreateIndex(index).BodyString(mapping).Do(ctx)
	if err != nil {
		return err
	}
	if createIndex.Acknowledged {
		zap.S().Infof("ElasticSearch: Created index %s", index)
	}

	return nil
}

func (i *index) AddIndexRequest(index string, entity entity.Entity, reqAction RequestAction) {
	zap.L().With(
		zap.String("index", index),
		zap.String("slug", entity.Slug()),
		zap.String("action", string(reqAction)),
	).Debug("ElasticSearch: AddIndexRequest")

	i.cache.Set(entity.Slug(), Request{index, entity, IndexRequest, reqAction}, cache.NoExpiration)
}

func (i *index) HasRequest(entity entity.Entity) bool {
	_, found := i.cache.Get(entity.Slug())

	return found
}

func (i *index) GetRequests() []Request {
	requests := make([]Request, 0)

	for _, item := range i.cache.Items() {
		requests = append(requests, item.Object.(Request))
	}

	return requests
}

func (i *index) GetRequest(id string) *Request {
	if item, found := i.cache.Get(id); found {
		req := item.(Request)
		return &req
	}

	return nil
}

func (i *index) ClearRequests() {
	i.cache.Flush()
}

func (i *index) BatchPersist() bool {
	if i.cache.ItemCount() < batchThreshold {
		return false
	}

	actions := i.cache.ItemCount()
	start := time.Now()
	i.Persist()

	zap.L().With(
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("actions", actions),
	).Info("ElasticSearch: Persisting data")

	return true
}

// Persist sends every buffered request and returns how many were flushed.
func (i *index) Persist() int {
	i.persisting.Lock()
	defer i.persisting.Unlock()

	requests := i.GetRequests()
	if len(requests) == 0 {
		return 0
	}

	if !i.Enabled() {
		zap.S().Debugf("ElasticSearch: Disabled, flushing %d requests", len(requests))
		i.flush(requests)
		return len(requests)
	}

	bulk := i.client.Bulk()
	for _, r := range requests {
		bulk.Add(elastic.NewBulkIndexRequest().Index(r.Index).Id(r.Entity.Slug()).Doc(r.Entity))

		if bulk.NumberOfActions() >= i.bulkCount {
			i.persist(bulk)
			bulk = i.client.Bulk()
		}
	}

	if bulk.NumberOfActions() != 0 {
		i.persist(bulk)
	}
	i.flush(requests)

	return len(requests)
}

func (i *index) persist(bulk *elastic.BulkService) {
	zap.S().Debugf("ElasticSearch: Persisting %d actions", bulk.NumberOfActions())

	response, err := bulk.Refresh(i.refresh).Do(context.Background())
	if err != nil {
		time.Sleep(1 * time.Second)
		response, err = bulk.Refresh(i.refresh).Do(context.Background())
		if err != nil {
			zap.L().With(zap.Error(err)).Error("ElasticSearch: Failed to persist requests")
			return
		}
	}

	for _, failed := range response.Failed() {
		zap.L().With(
			zap.Any("error", failed.Error),
			zap.String("index", failed.Index),
			zap.String("id", failed.Id),
		).Error("ElasticSearch: Failed to persist request. Retrying...")

		if req := i.GetRequest(failed.Id); req != nil {
			i.save(req.Index, req.Entity, 1)
		}
	}
}

func (i *index) save(index string, entity entity.Entity, attempt int) {
	if attempt > saveAttempts {
		zap.L().With(zap.String("index", index), zap.String("slug", entity.Slug())).
			Error("ElasticSearch: Failed to save entity, Too many attempts")
		return
	}

	_, err := i.client.Index().
		Index(index).
		Id(entity.Slug()).
		BodyJson(entity).
		Do(context.Background())

	if err != nil {
		zap.L().With(zap.Error(err), zap.String("index", index), zap.String("slug", entity.Slug())).
			Error("ElasticSearch: Failed to save entity")
		time.Sleep(1 * time.Second)

		i.save(index, entity, attempt+1)
	}
}

// flush drops only the requests that were persisted; anything buffered while
// persisting stays for the next run.
func (i *index) flush(requests []Request) {
	for _, req := range requests {
		i.cache.Delete(req.Entity.Slug())
	}
	zap.L().Debug("ElasticSearch: Flushed buffer")
}
