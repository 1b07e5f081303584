package billing

import "encoding/json"

// Event types consumed from the billing provider. Anything else is logged
// and acknowledged without effect.
const (
	EventInvoicePaid         = "invoice.paid"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventCheckoutCompleted   = "checkout.session.completed"
)

// Event is the provider's webhook envelope.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type price struct {
	ID string `json:"id"`
}

type lineItem struct {
	Price price `json:"price"`
}

// Subscription is the slice of the provider's subscription object we need.
type Subscription struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata"`
	Items    struct {
		Data []lineItem `json:"data"`
	} `json:"items"`
}

// Invoice is the slice of the provider's invoice object we need.
type Invoice struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
	Lines        struct {
		Data []lineItem `json:"data"`
	} `json:"lines"`
}

// CheckoutSession is the slice of the provider's checkout session we need.
type CheckoutSession struct {
	ID           string            `json:"id"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

// PriceID returns the first line item's price ID, or "".
func (s Subscription) PriceID() string {
	if len(s.Items.Data) == 0 {
		return ""
	}
	return s.Items.Data[0].Price.ID
}

// PriceID returns the first invoice line's price ID, or "".
func (i Invoice) PriceID() string {
	if len(i.Lines.Data) == 0 {
		return ""
	}
	return i.Lines.Data[0].Price.ID
}
