package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/MeKo-Tech/platescan/internal/nutrition"
)

// DefaultRemoteBaseURL is the public product database endpoint.
const DefaultRemoteBaseURL = "https://world.openfoodfacts.org"

// RemoteClient fetches product nutrition facts by barcode from an
// OpenFoodFacts-compatible API.
type RemoteClient struct {
	baseURL string
	client  *http.Client
}

// NewRemoteClient creates a client for the given base URL (the public
// endpoint when empty).
func NewRemoteClient(baseURL string, timeout time.Duration) *RemoteClient {
	if baseURL == "" {
		baseURL = DefaultRemoteBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// productResponse mirrors the subset of the API payload we read. Values are
// per 100g; the API reports them as floats.
type productResponse struct {
	Status  int `json:"status"`
	Product struct {
		Nutriments map[string]float64 `json:"nutriments"`
	} `json:"product"`
}

// Fetch returns the nutrition facts for a barcode, or nil when the product
// is unknown. Transport and decode failures are errors.
func (c *RemoteClient) Fetch(ctx context.Context, code string) (*nutrition.Estimate, error) {
	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch product %q: %w", code, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch product %q: unexpected status %d", code, resp.StatusCode)
	}

	var payload productResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode product %q: %w", code, err)
	}
	if payload.Status != 1 {
		return nil, nil
	}

	est := estimateFromNutriments(payload.Product.Nutriments)
	if est.IsEmpty() {
		return nil, nil
	}
	return est, nil
}

// nutrimentKeys maps API per-100g fields onto estimate fields. Sodium is
// reported in grams by the API and converted to mg.
func estimateFromNutriments(n map[string]float64) *nutrition.Estimate {
	est := &nutrition.Estimate{}
	setInt := func(dst **int, key string, factor float64) {
		if v, ok := n[key]; ok {
			*dst = nutrition.Int(int(math.Round(v * factor)))
		}
	}
	setInt(&est.Calories, "energy-kcal_100g", 1)
	setInt(&est.CarbsG, "carbohydrates_100g", 1)
	setInt(&est.ProteinG, "proteins_100g", 1)
	setInt(&est.FatG, "fat_100g", 1)
	setInt(&est.SugarsG, "sugars_100g", 1)
	setInt(&est.FibreG, "fiber_100g", 1)
	setInt(&est.SaturatedFatG, "saturated-fat_100g", 1)
	setInt(&est.SodiumMg, "sodium_100g", 1000)
	est.Clamp()
	return est
}
