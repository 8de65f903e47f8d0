package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/chain"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/entity"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/event"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/marketplace"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/registry"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/repository"
	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type Server struct {
	host        *chain.Host
	registry    *registry.Registry
	marketplace *marketplace.Marketplace
	actionRepo  repository.NftActionRepository
	cache       *cache.Cache

	// generation counts flushes; a read only caches what it loaded if no
	// flush happened in between.
	mu         sync.Mutex
	generation uint64
}

type CallRequest struct {
	Sender    entity.Principal `json:"sender"`
	Arguments entity.Args      `json:"arguments"`
}

type FeeResponse struct {
	Fee      uint64 `json:"fee"`
	MaxFee   uint64 `json:"maxFee"`
	MinPrice uint64 `json:"minPrice"`
	MaxPrice uint64 `json:"maxPrice"`
	Owner    string `json:"owner"`
}

type BalanceResponse struct {
	Principal entity.Principal `json:"principal"`
	Balance   uint64           `json:"balance"`
}

const defaultActionsSize = 25

func NewServer(
	host *chain.Host,
	registry *registry.Registry,
	marketplace *marketplace.Marketplace,
	actionRepo repository.NftActionRepository,
	ttl time.Duration,
) *Server {
	return &Server{
		host:        host,
		registry:    registry,
		marketplace: marketplace,
		actionRepo:  actionRepo,
		cache:       cache.New(ttl, 2*ttl),
	}
}

// Subscribe drops cached reads whenever a committed action changes state.
func (s *Server) Subscribe(events *event.Manager) {
	for _, t := range event.ActionEvents {
		events.AddEventListener(t, func(interface{}) {
			s.flush()
		})
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	v2 := r.PathPrefix("/v2").Subrouter()
	v2.HandleFunc("/contracts/call/{contract}/{operation}", s.handleCall).Methods("POST")
	v2.HandleFunc("/contracts/read/{contract}/{operation}", s.handleRead).Methods("POST")
	v2.HandleFunc("/assets/{assetId:[0-9]+}", s.handleGetAsset).Methods("GET")
	v2.HandleFunc("/listings", s.handleGetListings).Methods("GET")
	v2.HandleFunc("/listings/{contract}/{tokenId:[0-9]+}", s.handleGetListing).Methods("GET")
	v2.HandleFunc("/fee", s.handleGetFee).Methods("GET")
	v2.HandleFunc("/actions/{contract}/{tokenId:[0-9]+}", s.handleGetActions).Methods("GET")
	v2.HandleFunc("/balances/{principal}", s.handleGetBalance).Methods("GET")
	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	contract, req, ok := s.decodeCall(w, r)
	if !ok {
		return
	}

	receipt := s.host.Call(contract, mux.Vars(r)["operation"], req.Arguments, req.Sender)
	if receipt.Result.Ok {
		s.flush()
	}
	writeJson(w, http.StatusOK, receipt)
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	contract, req, ok := s.decodeCall(w, r)
	if !ok {
		return
	}

	result := s.host.Read(contract, mux.Vars(r)["operation"], req.Arguments, req.Sender)
	writeJson(w, http.StatusOK, result)
}

func (s *Server) decodeCall(w http.ResponseWriter, r *http.Request) (entity.Principal, CallRequest, bool) {
	contract, err := entity.ParsePrincipal(mux.Vars(r)["contract"])
	if err != nil || !contract.IsContract() {
		http.Error(w, "Invalid contract principal", http.StatusBadRequest)
		return "", CallRequest{}, false
	}

	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		zap.L().With(zap.Error(err)).Warn("API: Invalid call body")
		http.Error(w, "Invalid call body", http.StatusBadRequest)
		return "", CallRequest{}, false
	}

	return contract, req, true
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetId, _ := strconv.ParseUint(mux.Vars(r)["assetId"], 10, 64)

	s.cached(w, r.URL.Path, func() (interface{}, error) {
		var asset entity.Asset
		var err error
		s.host.View(func() {
			asset, err = s.registry.GetAsset(assetId)
		})
		return asset, err
	})
}

func (s *Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r.URL.Path, func() (interface{}, error) {
		var listings []entity.Listing
		s.host.View(func() {
			listings = s.marketplace.Listings()
		})
		return listings, nil
	})
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := nftFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.cached(w, r.URL.Path, func() (interface{}, error) {
		var listing entity.Listing
		s.host.View(func() {
			listing, err = s.marketplace.GetListing(contract, tokenId)
		})
		return listing, err
	})
}

func (s *Server) handleGetFee(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r.URL.Path, func() (interface{}, error) {
		var resp FeeResponse
		s.host.View(func() {
			params := s.marketplace.Params()
			resp = FeeResponse{
				Fee:      s.marketplace.Fee(),
				MaxFee:   params.MaxFee,
				MinPrice: params.MinPrice,
				MaxPrice: params.MaxPrice,
				Owner:    string(params.PlatformOwner),
			}
		})
		return resp, nil
	})
}

func (s *Server) handleGetActions(w http.ResponseWriter, r *http.Request) {
	contract, tokenId, err := nftFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	size := defaultActionsSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil || size <= 0 {
			http.Error(w, "Invalid size", http.StatusBadRequest)
			return
		}
	}

	actions, err := s.actionRepo.GetNftActions(string(contract), tokenId, size)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("API: Failed to get actions")
		http.Error(w, "Failed to get actions", http.StatusInternalServerError)
		return
	}

	writeJson(w, http.StatusOK, actions)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	principal, err := entity.ParsePrincipal(mux.Vars(r)["principal"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJson(w, http.StatusOK, BalanceResponse{principal, s.host.Balance(principal)})
}

func (s *Server) cached(w http.ResponseWriter, key string, load func() (interface{}, error)) {
	if body, found := s.cache.Get(key); found {
		writeJson(w, http.StatusOK, body)
		return
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	body, err := load()
	if errors.Is(err, entity.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("key", key)).Error("API: Failed to load")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	if s.generation == generation {
		s.cache.SetDefault(key, body)
	}
	s.mu.Unlock()

	writeJson(w, http.StatusOK, body)
}

func (s *Server) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.cache.Flush()
}

func nftFromRequest(r *http.Request) (entity.Principal, uint64, error) {
	contract, err := entity.ParsePrincipal(mux.Vars(r)["contract"])
	if err != nil {
		return "", 0, err
	}

	tokenId, err := strconv.ParseUint(mux.Vars(r)["tokenId"], 10, 64)
	if err != nil {
		return "", 0, errors.New("invalid token id")
	}

	return contract, tokenId, nil
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Warn("API: Failed to write response")
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
