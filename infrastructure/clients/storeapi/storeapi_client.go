package storeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/logger"
)

const catalogCacheTTL = 300 * time.Second

// productQuery is encoded into the catalog listing URL.
type productQuery struct {
	Limit int `url:"limit"`
	Page  int `url:"page"`
}

// Client fetches storefront context from the per-tenant platform API,
// caching responses so repeated webhook bursts don't hammer the store.
type Client struct {
	httpClient *http.Client
	cache      repository.ICatalogCache
}

func NewStoreAPIClient(cache repository.ICatalogCache) repository.IStoreAPI {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
	}
}

func (c *Client) StoreInfo(ctx context.Context, config *model.WhatsAppStoreConfig) (map[string]interface{}, error) {
	cacheKey := "store_info_" + config.StoreName
	var cached map[string]interface{}
	if found, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return cached, nil
	}

	var info map[string]interface{}
	if err := c.get(ctx, config.ApiBaseURL()+"/user", config.ApiToken, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch store info: %w", err)
	}

	if err := c.cache.Set(ctx, cacheKey, info, catalogCacheTTL); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to cache store info")
	}
	return info, nil
}

func (c *Client) Products(ctx context.Context, config *model.WhatsAppStoreConfig, limit int) ([]map[string]interface{}, error) {
	cacheKey := "store_products_" + config.StoreName
	var cached []map[string]interface{}
	if found, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return cached, nil
	}

	q, err := query.Values(productQuery{Limit: limit, Page: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to encode product query: %w", err)
	}

	var raw map[string]interface{}
	url := config.ApiBaseURL() + "/fetch-all-products?" + q.Encode()
	if err := c.get(ctx, url, config.ApiToken, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := extractProducts(raw)
	if err := c.cache.Set(ctx, cacheKey, products, catalogCacheTTL); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to cache products")
	}
	return products, nil
}

func (c *Client) get(ctx context.Context, url, token string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("store API returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// extractProducts tolerates both a bare list and the paginated envelope
// the platform wraps listings in ({"data": [...]} or {"products": [...]}).
func extractProducts(raw map[string]interface{}) []map[string]interface{} {
	for _, key := range []string{"data", "products"} {
		list, ok := raw[key].([]interface{})
		if !ok {
			continue
		}
		products := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if p, ok := item.(map[string]interface{}); ok {
				products = append(products, p)
			}
		}
		return products
	}
	return []map[string]interface{}{}
}
