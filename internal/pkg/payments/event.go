package payments

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// EventKind classifies a gateway subscription notification.
type EventKind string

const (
	KindSignup    EventKind = "subscription-signup"
	KindCancel    EventKind = "subscription-cancel"
	KindEndOfTerm EventKind = "subscription-end-of-term"
	KindModify    EventKind = "subscription-modify"
)

// ErrNotSubscriptionEvent marks IPN messages that are no subscription
// lifecycle notification (single payments, refunds, ...). They are
// acknowledged and ignored.
var ErrNotSubscriptionEvent = errors.New("not a subscription event")

// ErrInvalidEvent marks payloads missing the fields a subscription event
// must carry.
var ErrInvalidEvent = errors.New("invalid webhook event")

// ipnTxnTypes maps PayPal IPN txn_type values to event kinds.
var ipnTxnTypes = map[string]EventKind{
	"subscr_signup": KindSignup,
	"subscr_cancel": KindCancel,
	"subscr_eot":    KindEndOfTerm,
	"subscr_modify": KindModify,
}

// Event is one normalized gateway notification. Flagged is set when the
// gateway postback marked the delivery invalid; flagged events never
// mutate the ledger.
type Event struct {
	Kind           EventKind
	SubscriptionID string
	AmountCents    int64
	TxnID          string
	Flagged        bool
	Raw            string
}

// Key is the deduplication key for the processed-event log.
func (e *Event) Key() string {
	return fmt.Sprintf("%s:%s:%d:%s", e.Kind, e.SubscriptionID, e.AmountCents, e.TxnID)
}

// ParseIPN parses a PayPal IPN form body into an Event.
func ParseIPN(body []byte) (*Event, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	kind, ok := ipnTxnTypes[values.Get("txn_type")]
	if !ok {
		return nil, fmt.Errorf("%w: txn_type %q", ErrNotSubscriptionEvent, values.Get("txn_type"))
	}

	subID := strings.TrimSpace(values.Get("subscr_id"))
	if subID == "" {
		return nil, fmt.Errorf("%w: missing subscr_id", ErrInvalidEvent)
	}

	// amount3 is the recurring amount; absent on cancel/eot.
	var cents int64
	if amt := strings.TrimSpace(values.Get("amount3")); amt != "" {
		cents, err = parseDollarsToCents(amt)
		if err != nil {
			return nil, fmt.Errorf("%w: amount3 %q", ErrInvalidEvent, amt)
		}
	}

	return &Event{
		Kind:           kind,
		SubscriptionID: subID,
		AmountCents:    cents,
		TxnID:          strings.TrimSpace(values.Get("txn_id")),
		Raw:            string(body),
	}, nil
}

// parseDollarsToCents converts "15.00" to 1500 without going through
// floating point.
func parseDollarsToCents(s string) (int64, error) {
	whole, frac, _ := strings.Cut(s, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	if frac == "" {
		return dollars * 100, nil
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	if dollars < 0 {
		return dollars*100 - cents, nil
	}
	return dollars*100 + cents, nil
}
