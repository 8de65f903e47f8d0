package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/api"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/chain"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HttpError is returned for any non 2xx response.
type HttpError struct {
	Status int
	Body   string
}

func (e HttpError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, strings.TrimSpace(e.Body))
}

// A Client talks to the marketplace HTTP API.
type Client struct {
	url        string
	httpClient *retryablehttp.Client
}

func NewClient(baseUrl string, timeout time.Duration, retries int) (*Client, error) {
	if len(baseUrl) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = retries
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = time.Second
	retryClient.HTTPClient.Timeout = timeout

	return &Client{strings.TrimRight(baseUrl, "/"), retryClient}, nil
}

func (c *Client) Call(contract entity.Principal, operation string, sender entity.Principal, args ...entity.Value) (*chain.Receipt, error) {
	var receipt chain.Receipt
	err := c.post(c.contractPath("call", contract, operation), api.CallRequest{Sender: sender, Arguments: args}, &receipt)
	if err != nil {
		return nil, err
	}

	return &receipt, nil
}

func (c *Client) Read(contract entity.Principal, operation string, sender entity.Principal, args ...entity.Value) (*entity.Result, error) {
	var result entity.Result
	err := c.post(c.contractPath("read", contract, operation), api.CallRequest{Sender: sender, Arguments: args}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) GetListing(contract entity.Principal, tokenId uint64) (*entity.Listing, error) {
	var listing entity.Listing
	if err := c.get(fmt.Sprintf("/v2/listings/%s/%d", url.PathEscape(string(contract)), tokenId), &listing); err != nil {
		return nil, err
	}

	return &listing, nil
}

func (c *Client) GetListings() ([]entity.Listing, error) {
	listings := make([]entity.Listing, 0)
	if err := c.get("/v2/listings", &listings); err != nil {
		return nil, err
	}

	return listings, nil
}

func (c *Client) GetAsset(assetId uint64) (*entity.Asset, error) {
	var asset entity.Asset
	if err := c.get(fmt.Sprintf("/v2/assets/%d", assetId), &asset); err != nil {
		return nil, err
	}

	return &asset, nil
}

func (c *Client) GetFee() (*api.FeeResponse, error) {
	var fee api.FeeResponse
	if err := c.get("/v2/fee", &fee); err != nil {
		return nil, err
	}

	return &fee, nil
}

func (c *Client) GetActions(contract entity.Principal, tokenId uint64, size int) ([]entity.NftAction, error) {
	actions := make([]entity.NftAction, 0)
	path := fmt.Sprintf("/v2/actions/%s/%d?size=%d", url.PathEscape(string(contract)), tokenId, size)
	if err := c.get(path, &actions); err != nil {
		return nil, err
	}

	return actions, nil
}

func (c *Client) contractPath(kind string, contract entity.Principal, operation string) string {
	return fmt.Sprintf("/v2/contracts/%s/%s/%s", kind, url.PathEscape(string(contract)), url.PathEscape(operation))
}

func (c *Client) post(path string, body interface{}, out interface{}) error {
	payloadBuffer := &bytes.Buffer{}
	if err := json.NewEncoder(payloadBuffer).Encode(body); err != nil {
		return err
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, c.url+path, payloadBuffer.Bytes())
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json;charset=utf-8")

	return c.do(req, out)
}

func (c *Client) get(path string, out interface{}) error {
	req, err := retryablehttp.NewRequest(http.MethodGet, c.url+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) do(req *retryablehttp.Request, out interface{}) error {
	req.Header.Add("Accept", "application/json")
	zap.L().With(zap.String("method", req.Method), zap.String("url", req.URL.String())).Debug("Client: Request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Client: Request failure")
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HttpError{resp.StatusCode, string(data)}
	}

	return json.Unmarshal(data, out)
}
