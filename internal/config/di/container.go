package di

import (
	"github.com/ZilDuck/stacks-asset-marketplace/internal/api"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/chain"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/elastic_search"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/event"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/indexer"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/marketplace"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/messenger"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/registry"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/repository"
	"github.com/sarulabs/di/v2"
)

// Container wraps the di container with typed getters.
type Container struct {
	ctn di.Container
}

func NewContainer(cfg config.Config) (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}
	if err := builder.Add(Definitions(cfg)...); err != nil {
		return nil, err
	}

	return &Container{builder.Build()}, nil
}

// Boot builds every service so contracts are deployed and listeners are
// attached before the first call.
func (c *Container) Boot() error {
	for _, name := range []string{"registry", "marketplace", "marketplace.indexer", "api"} {
		if _, err := c.ctn.SafeGet(name); err != nil {
			return err
		}
	}

	return nil
}

func (c *Container) Delete() error {
	return c.ctn.Delete()
}

func (c *Container) GetEvents() *event.Manager {
	return c.ctn.Get("events").(*event.Manager)
}

func (c *Container) GetHost() *chain.Host {
	return c.ctn.Get("host").(*chain.Host)
}

func (c *Container) GetRegistry() *registry.Registry {
	return c.ctn.Get("registry").(*registry.Registry)
}

func (c *Container) GetMarketplace() *marketplace.Marketplace {
	return c.ctn.Get("marketplace").(*marketplace.Marketplace)
}

func (c *Container) GetElastic() elastic_search.Index {
	return c.ctn.Get("elastic").(elastic_search.Index)
}

func (c *Container) GetActionRepo() repository.NftActionRepository {
	return c.ctn.Get("action.repo").(repository.NftActionRepository)
}

func (c *Container) GetMessenger() messenger.MessageService {
	return c.ctn.Get("messenger").(messenger.MessageService)
}

func (c *Container) GetMarketplaceIndexer() indexer.MarketplaceIndexer {
	return c.ctn.Get("marketplace.indexer").(indexer.MarketplaceIndexer)
}

func (c *Container) GetApi() *api.Server {
	return c.ctn.Get("api").(*api.Server)
}
