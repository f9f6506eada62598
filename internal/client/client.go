package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sqzls/waterwatch/pkg/models"
)

const (
	requestTimeout = 30 * time.Second

	// maxConns caps concurrent connections against the utility's host
	maxConns = 5

	// okCode is the success sentinel in API payloads
	okCode = 200

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client talks to the water utility's billing API
type Client struct {
	billingURL string
	houseURL   string // template with one %s for the house id
	httpClient *http.Client
}

// New creates a new API client
func New(billingURL, houseURL string) *Client {
	return &Client{
		billingURL: billingURL,
		houseURL:   houseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxConnsPerHost: maxConns,
			},
		},
	}
}

// QueryWindow returns the begin/end month bounds for the recurring fetch:
// January 1 of the previous year through January 31 of the next year.
func QueryWindow(now time.Time) (begin, end string) {
	year := now.Year()
	return fmt.Sprintf("%d-01-01", year-1), fmt.Sprintf("%d-01-31", year+1)
}

// billingResponse is the billing-list payload envelope
type billingResponse struct {
	Code int                 `json:"code"`
	Rows []models.BillingRow `json:"rows"`
}

// houseResponse is the house detail payload envelope
type houseResponse struct {
	Code int `json:"code"`
	Data struct {
		Customer struct {
			Balance models.Amount `json:"balance"`
		} `json:"customer"`
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"data"`
}

// ListBillingByMonth fetches the monthly billing rows for a house within the
// begin/end month window (YYYY-MM-DD). A non-OK HTTP status or payload code
// means "no rows" and is not an error; only transport failures are.
func (c *Client) ListBillingByMonth(ctx context.Context, houseID, begin, end string) ([]models.BillingRow, error) {
	params := url.Values{}
	params.Set("houseId", houseID)
	params.Set("params[beginMonth]", begin)
	params.Set("params[endMonth]", end)

	reqURL := fmt.Sprintf("%s?%s", c.billingURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching billing list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var payload billingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil
	}
	if payload.Code != okCode {
		return nil, nil
	}

	return payload.Rows, nil
}

// GetHouseDetail fetches the account balance and identity fields. Callers
// treat any failure here as "detail unavailable" rather than a cycle error.
func (c *Client) GetHouseDetail(ctx context.Context, houseID string) (*models.HouseDetail, error) {
	reqURL := fmt.Sprintf(c.houseURL, url.PathEscape(houseID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching house detail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var payload houseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil
	}
	if payload.Code != okCode {
		return nil, nil
	}

	return &models.HouseDetail{
		Balance:      payload.Data.Customer.Balance.Float(),
		CustomerName: payload.Data.Name,
		Address:      payload.Data.Address,
	}, nil
}

// Validate checks that the house id is accepted by the API. It performs the
// billing-list call for the current calendar year and reports the success
// sentinel as a boolean; any failure reads as invalid.
func (c *Client) Validate(ctx context.Context, houseID string) bool {
	year := time.Now().Year()
	begin := fmt.Sprintf("%d-01-01", year)
	end := fmt.Sprintf("%d-12-31", year)

	params := url.Values{}
	params.Set("houseId", houseID)
	params.Set("params[beginMonth]", begin)
	params.Set("params[endMonth]", end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.billingURL, params.Encode()), nil)
	if err != nil {
		return false
	}
	setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var payload struct {
		Code int `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false
	}
	return payload.Code == okCode
}

func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
}
