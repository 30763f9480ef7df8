package payments

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(ipnURL, nvpURL string) *PayPalClient {
	return &PayPalClient{
		ipnURL:    ipnURL,
		nvpURL:    nvpURL,
		user:      "api-user",
		password:  "api-pass",
		signature: "api-sig",
		http:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestVerifyIPNVerified(t *testing.T) {
	var received []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		io.WriteString(w, "VERIFIED")
	}))
	defer ts.Close()

	c := testClient(ts.URL, "")
	body := []byte("txn_type=subscr_signup&subscr_id=I-1&amount3=15.00")

	ok, err := c.VerifyIPN(context.Background(), body)
	require.NoError(t, err)
	assert.True(t, ok)

	// The postback is the original body with the validate command in front.
	assert.Equal(t, "cmd=_notify-validate&"+string(body), string(received))
}

func TestVerifyIPNInvalid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "INVALID")
	}))
	defer ts.Close()

	c := testClient(ts.URL, "")
	ok, err := c.VerifyIPN(context.Background(), []byte("txn_type=subscr_signup"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyIPNTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	c := testClient(ts.URL, "")
	_, err := c.VerifyIPN(context.Background(), []byte("txn_type=subscr_signup"))
	assert.Error(t, err)
}

func TestSubscriptionAmountCents(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "GetRecurringPaymentsProfileDetails", r.PostForm.Get("METHOD"))
		assert.Equal(t, "api-user", r.PostForm.Get("USER"))
		assert.Equal(t, "I-PROFILE1", r.PostForm.Get("PROFILEID"))

		resp := url.Values{}
		resp.Set("ACK", "Success")
		resp.Set("PROFILEID", "I-PROFILE1")
		resp.Set("STATUS", "Active")
		resp.Set("AMT", "35.00")
		io.WriteString(w, resp.Encode())
	}))
	defer ts.Close()

	c := testClient("", ts.URL)
	cents, err := c.SubscriptionAmountCents(context.Background(), "I-PROFILE1")
	require.NoError(t, err)
	assert.Equal(t, int64(3500), cents)
}

func TestSubscriptionAmountCentsFailureACK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := url.Values{}
		resp.Set("ACK", "Failure")
		resp.Set("L_LONGMESSAGE0", "Profile ID is invalid")
		io.WriteString(w, resp.Encode())
	}))
	defer ts.Close()

	c := testClient("", ts.URL)
	_, err := c.SubscriptionAmountCents(context.Background(), "I-NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Profile ID is invalid")
}

func TestSubscriptionAmountCentsMissingAmount(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ACK=Success")
	}))
	defer ts.Close()

	c := testClient("", ts.URL)
	_, err := c.SubscriptionAmountCents(context.Background(), "I-PROFILE1")
	assert.Error(t, err)
}

func TestSkipVerifier(t *testing.T) {
	ok, err := SkipVerifier{}.VerifyIPN(context.Background(), []byte("anything"))
	require.NoError(t, err)
	assert.True(t, ok)
}
