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
	"go.uber.org/zap"
)

func Definitions(cfg config.Config) []di.Def {
	return []di.Def{
		{
			Name: "events",
			Build: func(ctn di.Container) (interface{}, error) {
				return event.NewManager(), nil
			},
			Close: func(obj interface{}) error {
				obj.(*event.Manager).Close()
				return nil
			},
		},
		{
			Name: "host",
			Build: func(ctn di.Container) (interface{}, error) {
				host := chain.NewHost(chain.NewStxLedger(), chain.NewCollections(), ctn.Get("events").(*event.Manager))
				for _, name := range cfg.Contracts.Collections {
					if _, err := host.DeployCollection(cfg.Contracts.Deployer.Contract(name)); err != nil {
						return nil, err
					}
				}
				return host, nil
			},
		},
		{
			Name: "registry",
			Build: func(ctn di.Container) (interface{}, error) {
				r := registry.NewRegistry()
				if err := ctn.Get("host").(*chain.Host).Deploy(cfg.RegistryPrincipal(), r); err != nil {
					return nil, err
				}
				return r, nil
			},
		},
		{
			Name: "marketplace",
			Build: func(ctn di.Container) (interface{}, error) {
				host := ctn.Get("host").(*chain.Host)
				m, err := marketplace.NewMarketplace(marketplace.Params{
					Holding:       cfg.MarketplacePrincipal(),
					PlatformOwner: cfg.Marketplace.PlatformOwner,
					MinPrice:      cfg.Marketplace.MinPrice,
					MaxPrice:      cfg.Marketplace.MaxPrice,
					Fee:           cfg.Marketplace.Fee,
					MaxFee:        cfg.Marketplace.MaxFee,
				}, host.Collections(), host.Stx())
				if err != nil {
					zap.L().With(zap.Error(err)).Error("Invalid marketplace configuration")
					return nil, err
				}
				if err := host.Deploy(cfg.MarketplacePrincipal(), m); err != nil {
					return nil, err
				}
				return m, nil
			},
		},
		{
			Name: "elastic",
			Build: func(ctn di.Container) (interface{}, error) {
				return elastic_search.New(cfg)
			},
			Close: func(obj interface{}) error {
				obj.(elastic_search.Index).Persist()
				return nil
			},
		},
		{
			Name: "action.repo",
			Build: func(ctn di.Container) (interface{}, error) {
				return repository.NewNftActionRepository(ctn.Get("elastic").(elastic_search.Index)), nil
			},
		},
		{
			Name: "messenger",
			Build: func(ctn di.Container) (interface{}, error) {
				return messenger.NewSqsMessenger(cfg.Aws)
			},
		},
		{
			Name: "marketplace.indexer",
			Build: func(ctn di.Container) (interface{}, error) {
				i := indexer.NewMarketplaceIndexer(
					ctn.Get("elastic").(elastic_search.Index),
					ctn.Get("action.repo").(repository.NftActionRepository),
					ctn.Get("messenger").(messenger.MessageService),
				)
				i.Subscribe(ctn.Get("events").(*event.Manager))
				return i, nil
			},
		},
		{
			Name: "api",
			Build: func(ctn di.Container) (interface{}, error) {
				s := api.NewServer(
					ctn.Get("host").(*chain.Host),
					ctn.Get("registry").(*registry.Registry),
					ctn.Get("marketplace").(*marketplace.Marketplace),
					ctn.Get("action.repo").(repository.NftActionRepository),
					cfg.CacheTTL,
				)
				s.Subscribe(ctn.Get("events").(*event.Manager))
				return s, nil
			},
		},
	}
}
