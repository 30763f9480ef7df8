package payments

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mirocommunity/localtv/internal/pkg/env"
)

const (
	ipnVerifyLiveURL    = "https://ipnpb.paypal.com/cgi-bin/webscr"
	ipnVerifySandboxURL = "https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"

	nvpLiveURL    = "https://api-3t.paypal.com/nvp"
	nvpSandboxURL = "https://api-3t.sandbox.paypal.com/nvp"

	nvpAPIVersion = "204.0"
)

// Verifier validates a raw IPN delivery with the gateway before any field
// of it is trusted.
type Verifier interface {
	VerifyIPN(ctx context.Context, rawBody []byte) (bool, error)
}

// PayPalClient talks to PayPal: IPN postback validation and NVP queries
// about recurring payment profiles.
type PayPalClient struct {
	ipnURL    string
	nvpURL    string
	user      string
	password  string
	signature string
	http      *http.Client
}

// NewPayPalClientFromEnv builds a client for the live or sandbox endpoints
// depending on PAYPAL_TEST.
func NewPayPalClientFromEnv() *PayPalClient {
	c := &PayPalClient{
		ipnURL:    ipnVerifyLiveURL,
		nvpURL:    nvpLiveURL,
		user:      env.GetEnv("PAYPAL_API_USER", ""),
		password:  env.GetEnv("PAYPAL_API_PASSWORD", ""),
		signature: env.GetEnv("PAYPAL_API_SIGNATURE", ""),
		http:      &http.Client{Timeout: 20 * time.Second},
	}
	if env.PayPalSandbox() {
		c.ipnURL = ipnVerifySandboxURL
		c.nvpURL = nvpSandboxURL
	}
	return c
}

// VerifyIPN posts the notification back to PayPal with
// cmd=_notify-validate. PayPal answers VERIFIED or INVALID.
func (c *PayPalClient) VerifyIPN(ctx context.Context, rawBody []byte) (bool, error) {
	body := append([]byte("cmd=_notify-validate&"), rawBody...)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ipnURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	answer, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(answer)) == "VERIFIED", nil
}

// SubscriptionAmountCents asks the NVP API what a recurring payments
// profile currently charges per period.
func (c *PayPalClient) SubscriptionAmountCents(ctx context.Context, profileID string) (int64, error) {
	form := url.Values{}
	form.Set("METHOD", "GetRecurringPaymentsProfileDetails")
	form.Set("VERSION", nvpAPIVersion)
	form.Set("USER", c.user)
	form.Set("PWD", c.password)
	form.Set("SIGNATURE", c.signature)
	form.Set("PROFILEID", profileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.nvpURL, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, err
	}
	fields, err := url.ParseQuery(string(raw))
	if err != nil {
		return 0, err
	}
	if ack := fields.Get("ACK"); ack != "Success" && ack != "SuccessWithWarning" {
		return 0, fmt.Errorf("paypal NVP %s: %s", ack, fields.Get("L_LONGMESSAGE0"))
	}
	amt := fields.Get("AMT")
	if amt == "" {
		return 0, fmt.Errorf("paypal NVP response missing AMT for profile %s", profileID)
	}
	return parseDollarsToCents(amt)
}

// SkipVerifier accepts every delivery. Used when LOCALTV_SKIP_PAYPAL is on
// (development and self-hosted deployments without a PayPal account).
type SkipVerifier struct{}

func (SkipVerifier) VerifyIPN(ctx context.Context, rawBody []byte) (bool, error) {
	return true, nil
}
