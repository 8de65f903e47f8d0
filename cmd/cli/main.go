package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/client"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config/di"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/messenger"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/scenario"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"os"
	"strings"
	"time"
)

var cfg config.Config

func main() {
	config.Init()
	cfg = *config.Get()

	urlFlag := &cli.StringFlag{Name: "url", Value: "http://localhost:" + cfg.ApiPort, Usage: "marketplace API base url"}
	senderFlag := &cli.StringFlag{Name: "sender", Value: string(cfg.Contracts.Deployer), Usage: "principal sending the call"}

	app := &cli.App{
		Name:  "marketplace",
		Usage: "interact with the asset registry and NFT marketplace",
		Commands: []*cli.Command{
			{
				Name:      "call",
				Usage:     "submit a contract call, arguments as type:value (uint:5000, principal:ST..., string-ascii:text)",
				ArgsUsage: "<contract> <operation> [arguments...]",
				Action:    call,
				Flags:     []cli.Flag{urlFlag, senderFlag},
			},
			{
				Name:      "read",
				Usage:     "evaluate a contract call without committing it",
				ArgsUsage: "<contract> <operation> [arguments...]",
				Action:    read,
				Flags:     []cli.Flag{urlFlag, senderFlag},
			},
			{
				Name:      "simulate",
				Usage:     "replay a JSON scenario against a fresh in-process chain",
				ArgsUsage: "<scenario.json>",
				Action:    simulate,
			},
			{
				Name:   "fee",
				Usage:  "show the platform fee and price bounds",
				Action: fee,
				Flags:  []cli.Flag{urlFlag},
			},
			{
				Name:      "listing",
				Usage:     "show a single listing, or all listings when no token is given",
				ArgsUsage: "[<contract> <tokenId>]",
				Action:    listing,
				Flags:     []cli.Flag{urlFlag},
			},
			{
				Name:      "actions",
				Usage:     "show the action history of a token or asset",
				ArgsUsage: "<contract> <tokenId>",
				Action:    actions,
				Flags:     []cli.Flag{urlFlag, &cli.IntFlag{Name: "size", Value: 25}},
			},
			{
				Name:   "watch-sales",
				Usage:  "consume marketplace sale notifications from the sale queue",
				Action: watchSales,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to run CLI")
	}
}

func newClient(c *cli.Context) (*client.Client, error) {
	return client.NewClient(c.String("url"), 10*time.Second, 3)
}

func callArgs(c *cli.Context) (entity.Principal, string, entity.Principal, entity.Args, error) {
	if c.NArg() < 2 {
		return "", "", "", nil, errors.New("contract and operation are required")
	}

	contract := entity.Principal(c.Args().Get(0))
	if !contract.IsContract() {
		contract = cfg.Contracts.Deployer.Contract(string(contract))
	}

	sender, err := entity.ParsePrincipal(c.String("sender"))
	if err != nil {
		return "", "", "", nil, err
	}

	args := make(entity.Args, 0, c.NArg()-2)
	for _, raw := range c.Args().Slice()[2:] {
		v, err := entity.ParseValue(raw)
		if err != nil {
			return "", "", "", nil, err
		}
		args = append(args, v)
	}

	return contract, c.Args().Get(1), sender, args, nil
}

func call(c *cli.Context) error {
	contract, operation, sender, args, err := callArgs(c)
	if err != nil {
		return err
	}

	api, err := newClient(c)
	if err != nil {
		return err
	}

	receipt, err := api.Call(contract, operation, sender, args...)
	if err != nil {
		return err
	}

	return printJson(receipt)
}

func read(c *cli.Context) error {
	contract, operation, sender, args, err := callArgs(c)
	if err != nil {
		return err
	}

	api, err := newClient(c)
	if err != nil {
		return err
	}

	result, err := api.Read(contract, operation, sender, args...)
	if err != nil {
		return err
	}

	return printJson(result)
}

func simulate(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("scenario file is required")
	}

	file, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer file.Close()

	s, err := scenario.Load(file)
	if err != nil {
		return err
	}

	local := cfg
	local.ElasticSearch.Hosts = nil
	local.Aws.SaleQueueUrl = ""

	container, err := di.NewContainer(local)
	if err != nil {
		return err
	}
	defer container.Delete()

	if err := container.Boot(); err != nil {
		return err
	}

	outcome := scenario.Run(container.GetHost(), local.Contracts.Deployer, *s)
	if err := printJson(outcome); err != nil {
		return err
	}
	if !outcome.Passed() {
		return fmt.Errorf("scenario failed: %s", strings.Join(outcome.Failures, "; "))
	}

	return nil
}

func fee(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}

	resp, err := api.GetFee()
	if err != nil {
		return err
	}

	return printJson(resp)
}

func listing(c *cli.Context) error {
	api, err := newClient(c)
	if err != nil {
		return err
	}

	if c.NArg() == 0 {
		listings, err := api.GetListings()
		if err != nil {
			return err
		}
		return printJson(listings)
	}

	contract, tokenId, err := nftArgs(c)
	if err != nil {
		return err
	}

	l, err := api.GetListing(contract, tokenId)
	if err != nil {
		return err
	}

	return printJson(l)
}

func actions(c *cli.Context) error {
	contract, tokenId, err := nftArgs(c)
	if err != nil {
		return err
	}

	api, err := newClient(c)
	if err != nil {
		return err
	}

	history, err := api.GetActions(contract, tokenId, c.Int("size"))
	if err != nil {
		return err
	}

	return printJson(history)
}

func watchSales(c *cli.Context) error {
	messageService, err := messenger.NewSqsMessenger(cfg.Aws)
	if err != nil {
		return err
	}
	if !messageService.Enabled(messenger.MarketplaceSale) {
		return messenger.ErrQueueNotConfigured
	}

	zap.L().Info("Subscribing to marketplace sales")
	messages := make(chan *sqs.Message, 10)
	go messageService.PollMessages(messenger.MarketplaceSale, messages)

	for message := range messages {
		var sale entity.MarketplaceSale
		if err := json.Unmarshal([]byte(*message.Body), &sale); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to read message")
			continue
		}

		zap.L().With(
			zap.String("txId", sale.TxID),
			zap.String("contract", string(sale.Contract)),
			zap.Uint64("tokenId", sale.TokenId),
			zap.Uint64("cost", sale.Cost),
			zap.Uint64("fee", sale.Fee),
		).Info("Marketplace sale")

		if err := messageService.DeleteMessage(messenger.MarketplaceSale, message); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to delete message")
		}
	}

	return nil
}

func nftArgs(c *cli.Context) (entity.Principal, uint64, error) {
	if c.NArg() != 2 {
		return "", 0, errors.New("contract and token id are required")
	}

	contract := entity.Principal(c.Args().Get(0))
	if !contract.IsContract() {
		contract = cfg.Contracts.Deployer.Contract(string(contract))
	}

	v, err := entity.ParseValue("uint:" + c.Args().Get(1))
	if err != nil {
		return "", 0, err
	}
	tokenId, err := v.Uint64()

	return contract, tokenId, err
}

func printJson(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
