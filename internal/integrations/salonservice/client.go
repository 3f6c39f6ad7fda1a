package salonservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client клиент для работы с SalonService (салоны, услуги, мастера)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента SalonService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// GetSalon получает салон с часовым поясом и списком менеджеров
func (c *Client) GetSalon(ctx context.Context, salonID int64) (*Salon, error) {
	var salon Salon
	url := fmt.Sprintf("%s/internal/salons/%d", c.baseURL, salonID)
	if err := c.getJSON(ctx, url, ErrSalonNotFound, &salon); err != nil {
		return nil, err
	}
	return &salon, nil
}

// GetService получает услугу салона
func (c *Client) GetService(ctx context.Context, salonID, serviceID int64) (*Service, error) {
	var service Service
	url := fmt.Sprintf("%s/internal/salons/%d/services/%d", c.baseURL, salonID, serviceID)
	if err := c.getJSON(ctx, url, ErrServiceNotFound, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// GetMaster получает мастера салона
func (c *Client) GetMaster(ctx context.Context, salonID, masterID int64) (*Master, error) {
	var master Master
	url := fmt.Sprintf("%s/internal/salons/%d/masters/%d", c.baseURL, salonID, masterID)
	if err := c.getJSON(ctx, url, ErrMasterNotFound, &master); err != nil {
		return nil, err
	}
	return &master, nil
}

// getJSON выполняет GET и декодирует ответ; 404 превращается в notFound
func (c *Client) getJSON(ctx context.Context, url string, notFound error, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return fmt.Errorf("%w: invalid ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		c.log.Warn("SalonService: unexpected status %d for %s", resp.StatusCode, url)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
