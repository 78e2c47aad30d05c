package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"medishare/types/ids"
)

// RegistryClient is a TokenView over the token registry's HTTP API.
// Reads are cached briefly so a burst of gate checks against the same
// credential doesn't hammer the registry.
type RegistryClient struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewRegistryClient(baseURL string) *RegistryClient {
	return &RegistryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   cache.New(30*time.Second, time.Minute),
	}
}

type tokenAccountDoc struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Mint    string `json:"mint"`
	Amount  uint64 `json:"amount"`
}

type mintDoc struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Supply   uint64 `json:"supply"`
}

func (c *RegistryClient) TokenAccount(id ids.ID) (TokenAccount, error) {
	cacheKey := "acct:" + id.String()
	if hit, ok := c.cache.Get(cacheKey); ok {
		return hit.(TokenAccount), nil
	}

	var doc tokenAccountDoc
	if err := c.getJSON("/v1/accounts/"+id.String(), &doc); err != nil {
		return TokenAccount{}, fmt.Errorf("token account lookup failed: %w", err)
	}
	acct, err := doc.toAccount()
	if err != nil {
		return TokenAccount{}, err
	}
	c.cache.Set(cacheKey, acct, cache.DefaultExpiration)
	return acct, nil
}

func (c *RegistryClient) Mint(id ids.ID) (Mint, error) {
	cacheKey := "mint:" + id.String()
	if hit, ok := c.cache.Get(cacheKey); ok {
		return hit.(Mint), nil
	}

	var doc mintDoc
	if err := c.getJSON("/v1/mints/"+id.String(), &doc); err != nil {
		return Mint{}, fmt.Errorf("mint lookup failed: %w", err)
	}
	addr, err := ids.FromString(doc.Address)
	if err != nil {
		return Mint{}, fmt.Errorf("registry returned bad mint address: %v", err)
	}
	mint := Mint{Address: addr, Decimals: doc.Decimals, Supply: doc.Supply}
	c.cache.Set(cacheKey, mint, cache.DefaultExpiration)
	return mint, nil
}

func (c *RegistryClient) getJSON(path string, out interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("registry has no entry at %s", path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry returned %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (d tokenAccountDoc) toAccount() (TokenAccount, error) {
	addr, err := ids.FromString(d.Address)
	if err != nil {
		return TokenAccount{}, fmt.Errorf("registry returned bad account address: %v", err)
	}
	owner, err := ids.FromString(d.Owner)
	if err != nil {
		return TokenAccount{}, fmt.Errorf("registry returned bad owner: %v", err)
	}
	mint, err := ids.FromString(d.Mint)
	if err != nil {
		return TokenAccount{}, fmt.Errorf("registry returned bad mint: %v", err)
	}
	return TokenAccount{Address: addr, Owner: owner, Mint: mint, Amount: d.Amount}, nil
}
