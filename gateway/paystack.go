package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.paystack.co"

type paystackClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewPaystackClient builds the live gateway client. The secret key signs
// API calls and webhook payloads.
func NewPaystackClient(secretKey, baseURL string) Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &paystackClient{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewPaystackClientFromEnv reads PAYSTACK_SECRET_KEY and PAYSTACK_BASE_URL.
func NewPaystackClientFromEnv() (Client, error) {
	secret := os.Getenv("PAYSTACK_SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("gateway configuration missing: PAYSTACK_SECRET_KEY")
	}
	return NewPaystackClient(secret, os.Getenv("PAYSTACK_BASE_URL")), nil
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type chargeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status         string `json:"status"` // "success", "failed"
		Reference      string `json:"reference"`
		GatewayMessage string `json:"gateway_response"`
	} `json:"data"`
}

func (p *paystackClient) Initialize(ctx context.Context, email string, amount decimal.Decimal, reference string, metadata map[string]string) (*InitializeResult, error) {
	payload := map[string]interface{}{
		"email":     email,
		"amount":    ToMinorUnits(amount),
		"reference": reference,
	}
	if len(metadata) > 0 {
		payload["metadata"] = metadata
	}

	var parsed initializeResponse
	if err := p.post(ctx, "/transaction/initialize", payload, &parsed); err != nil {
		return nil, err
	}
	if !parsed.Status {
		return nil, &GatewayError{Message: parsed.Message}
	}
	if parsed.Data.AuthorizationURL == "" {
		return nil, &GatewayError{Message: "gateway returned empty authorization URL"}
	}

	return &InitializeResult{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
		Reference:        parsed.Data.Reference,
	}, nil
}

func (p *paystackClient) ChargeAuthorization(ctx context.Context, authCode, email string, amount decimal.Decimal, reference string) (*ChargeResult, error) {
	payload := map[string]interface{}{
		"authorization_code": authCode,
		"email":              email,
		"amount":             ToMinorUnits(amount),
		"reference":          reference,
	}

	var parsed chargeResponse
	if err := p.post(ctx, "/transaction/charge_authorization", payload, &parsed); err != nil {
		return nil, err
	}
	if !parsed.Status {
		return nil, &GatewayError{Message: parsed.Message}
	}

	result := &ChargeResult{
		Succeeded:        parsed.Data.Status == "success",
		GatewayReference: parsed.Data.Reference,
	}
	if !result.Succeeded {
		result.FailureReason = parsed.Data.GatewayMessage
		if result.FailureReason == "" {
			result.FailureReason = parsed.Data.Status
		}
	}
	return result, nil
}

// VerifySignature checks the HMAC-SHA512 of the raw webhook body against the
// signature header.
func (p *paystackClient) VerifySignature(rawBody []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

// post sends a JSON request and decodes the response, mapping transport
// failures and 5xx to transient errors and 4xx to declines.
func (p *paystackClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gateway: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Message: fmt.Sprintf("failed to reach gateway: %v", err), Transient: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Message: fmt.Sprintf("read gateway response: %v", err), Transient: true}
	}

	if resp.StatusCode >= 500 {
		log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("gateway server error")
		return &GatewayError{Code: fmt.Sprint(resp.StatusCode), Message: string(body), Transient: true}
	}
	if resp.StatusCode >= 400 {
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &errBody)
		if errBody.Message == "" {
			errBody.Message = string(body)
		}
		return &GatewayError{Code: fmt.Sprint(resp.StatusCode), Message: errBody.Message}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("gateway: parse response: %w", err)
	}
	return nil
}
