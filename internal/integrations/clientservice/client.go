package clientservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// errorBodyLimit сколько байт тела ошибки попадает в сообщение
const errorBodyLimit = 512

// Client клиент для работы с ClientService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента ClientService
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

// GetClient получает карточку клиента салона
func (c *Client) GetClient(ctx context.Context, salonID, clientID int64) (*ClientInfo, error) {
	url := fmt.Sprintf("%s/internal/salons/%d/clients/%d", c.baseURL, salonID, clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var client ClientInfo
	if err := json.NewDecoder(resp.Body).Decode(&client); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if client.ID != clientID {
		return nil, fmt.Errorf("%w: requested client %d, got %d", ErrInvalidResponse, clientID, client.ID)
	}

	return &client, nil
}

// Admit решает, может ли клиент записаться в салон
// Ошибка возвращается только для отсутствующего клиента; сбои ClientService дают AdmissionUnverified
func (c *Client) Admit(ctx context.Context, salonID, clientID int64) (Admission, error) {
	client, err := c.GetClient(ctx, salonID, clientID)
	switch {
	case errors.Is(err, ErrClientNotFound):
		return AdmissionDenied, err
	case err != nil:
		c.log.Warn("ClientService: admitting client_id=%d in salon=%d without block check: %v", clientID, salonID, err)
		return AdmissionUnverified, nil
	case client.IsBlocked:
		c.log.Info("ClientService: client_id=%d is blocked in salon=%d", clientID, salonID)
		return AdmissionBlocked, nil
	}
	return AdmissionAllowed, nil
}

// statusError переводит не-200 ответ в ошибку пакета, сохраняя сообщение сервиса
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))

	message := string(body)
	var payload ErrorResponse
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		message = payload.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrClientNotFound, message)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, message)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, message)
	}
}
