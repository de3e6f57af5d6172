package domain

// StatusPaid is the only order status that triggers buyer messaging.
const StatusPaid = "paid"

// Order is the subset of the marketplace order payload the pipeline needs.
// Orders are transient; nothing here is persisted.
type Order struct {
	ID     int64       `json:"id"`
	Status string      `json:"status"`
	PackID *int64      `json:"pack_id"`
	Buyer  OrderParty  `json:"buyer"`
	Seller OrderParty  `json:"seller"`
	Items  []OrderItem `json:"order_items"`
}

// OrderParty identifies a buyer or seller account.
type OrderParty struct {
	ID int64 `json:"id"`
}

// OrderItem is one purchased line item.
type OrderItem struct {
	Item     ItemInfo `json:"item"`
	Quantity int      `json:"quantity"`
}

// ItemInfo carries the catalog identifier and title of a listed product.
type ItemInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MessagePackID returns the pack used to route buyer-seller messaging,
// falling back to the order ID when the order carries no pack.
func (o *Order) MessagePackID() int64 {
	if o.PackID != nil && *o.PackID != 0 {
		return *o.PackID
	}
	return o.ID
}

// FirstCatalogID returns the catalog identifier of the first line item, or
// the empty string for an order with no items.
func (o *Order) FirstCatalogID() string {
	if len(o.Items) == 0 {
		return ""
	}
	return o.Items[0].Item.ID
}

// OutboundMessage is a buyer-directed message ready to be posted to the
// marketplace messaging endpoint.
type OutboundMessage struct {
	From int64
	To   int64
	Text string
}
