package core

// Delivery tells what is known about a write once the remote endpoint was contacted.
type Delivery string

const (
	// DeliveryUnconfirmed: the request was sent but its response was discarded,
	// so sent does not mean applied.
	DeliveryUnconfirmed Delivery = "unconfirmed"
	// DeliveryConfirmed: the remote endpoint answered `success:true`.
	DeliveryConfirmed Delivery = "confirmed"
)
