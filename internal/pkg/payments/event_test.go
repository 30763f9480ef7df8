package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIPNSignup(t *testing.T) {
	body := "txn_type=subscr_signup&subscr_id=I-XYZ12345&amount3=35.00&txn_id=4B141189&payer_email=admin%40example.org"

	ev, err := ParseIPN([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, KindSignup, ev.Kind)
	assert.Equal(t, "I-XYZ12345", ev.SubscriptionID)
	assert.Equal(t, int64(3500), ev.AmountCents)
	assert.Equal(t, "4B141189", ev.TxnID)
	assert.False(t, ev.Flagged)
	assert.Equal(t, body, ev.Raw)
}

func TestParseIPNCancelWithoutAmount(t *testing.T) {
	ev, err := ParseIPN([]byte("txn_type=subscr_cancel&subscr_id=I-XYZ12345"))
	require.NoError(t, err)
	assert.Equal(t, KindCancel, ev.Kind)
	assert.Zero(t, ev.AmountCents)
	assert.Empty(t, ev.TxnID)
}

func TestParseIPNTxnTypes(t *testing.T) {
	tests := []struct {
		txnType string
		want    EventKind
	}{
		{txnType: "subscr_signup", want: KindSignup},
		{txnType: "subscr_cancel", want: KindCancel},
		{txnType: "subscr_eot", want: KindEndOfTerm},
		{txnType: "subscr_modify", want: KindModify},
	}
	for _, tt := range tests {
		ev, err := ParseIPN([]byte("txn_type=" + tt.txnType + "&subscr_id=I-1"))
		require.NoError(t, err, tt.txnType)
		assert.Equal(t, tt.want, ev.Kind)
	}
}

func TestParseIPNNonSubscriptionEvent(t *testing.T) {
	for _, body := range []string{
		"txn_type=web_accept&subscr_id=I-1",
		"txn_type=subscr_payment&subscr_id=I-1",
		"payment_status=Completed",
	} {
		_, err := ParseIPN([]byte(body))
		assert.ErrorIs(t, err, ErrNotSubscriptionEvent, body)
	}
}

func TestParseIPNMissingSubscriptionID(t *testing.T) {
	_, err := ParseIPN([]byte("txn_type=subscr_signup&amount3=15.00"))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = ParseIPN([]byte("txn_type=subscr_signup&subscr_id=++&amount3=15.00"))
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestParseIPNBadAmount(t *testing.T) {
	_, err := ParseIPN([]byte("txn_type=subscr_signup&subscr_id=I-1&amount3=abc"))
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestParseDollarsToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "15.00", want: 1500},
		{in: "35.00", want: 3500},
		{in: "75.00", want: 7500},
		{in: "0.00", want: 0},
		{in: "15", want: 1500},
		{in: "15.5", want: 1550},
		{in: "15.005", want: 1500},
		{in: "-5.25", want: -525},
	}
	for _, tt := range tests {
		got, err := parseDollarsToCents(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "1.x"} {
		_, err := parseDollarsToCents(bad)
		assert.Error(t, err, bad)
	}
}

func TestEventKey(t *testing.T) {
	a := &Event{Kind: KindSignup, SubscriptionID: "I-1", AmountCents: 1500, TxnID: "T1"}
	b := &Event{Kind: KindSignup, SubscriptionID: "I-1", AmountCents: 1500, TxnID: "T1"}
	c := &Event{Kind: KindCancel, SubscriptionID: "I-1", AmountCents: 1500, TxnID: "T1"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}
