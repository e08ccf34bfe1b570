// Package otp wraps the WhatsApp gateway used to deliver one-time login
// codes to SEC phones.
package otp

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrGatewayTimeout means the gateway did not answer in time; the caller
	// may retry.
	ErrGatewayTimeout = errors.New("otp: gateway timed out")
	// ErrGatewayRejected means the gateway answered and refused the dispatch.
	ErrGatewayRejected = errors.New("otp: gateway rejected the message")
)

type GatewayClient struct {
	httpClient *resty.Client
}

func NewGatewayClient(baseURL, apiKey string, timeout time.Duration) *GatewayClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+apiKey)

	return &GatewayClient{
		httpClient: client,
	}
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SendCode dispatches a one-time code to the phone. Timeouts and rejections
// are distinct failure modes: only timeouts are worth retrying.
func (c *GatewayClient) SendCode(phone, code string, expiration time.Duration) error {
	return c.SendMessage(phone, fmt.Sprintf("Your SalesDost login code is %s. It expires in %d minutes.", code, int(expiration.Minutes())))
}

// SendMessage dispatches an arbitrary text message to the phone.
func (c *GatewayClient) SendMessage(phone, message string) error {
	body := sendRequest{
		Phone:   phone,
		Message: message,
	}

	result := &sendResponse{}
	resp, err := c.httpClient.R().
		SetBody(body).
		SetResult(result).
		Post("/v1/messages")
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrGatewayTimeout
		}
		return err
	}

	if resp.IsError() || !result.Success {
		return fmt.Errorf("%w: status %d %s", ErrGatewayRejected, resp.StatusCode(), result.Error)
	}

	return nil
}
