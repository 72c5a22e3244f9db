package types

// EventKind is the closed set of negotiation history events.
type EventKind string

func (k EventKind) String() string {
	return string(k)
}

const (
	EventProposal EventKind = "PROPOSAL"
	EventCounter  EventKind = "COUNTER"
	EventAccept   EventKind = "ACCEPT"
	EventReject   EventKind = "REJECT"
)

// NotificationType tags messages sent to the notification sink.
type NotificationType string

func (t NotificationType) String() string {
	return string(t)
}

const (
	NotificationRideRequest   NotificationType = "RIDE_REQUEST"
	NotificationOffer         NotificationType = "OFFER"
	NotificationOfferAccepted NotificationType = "OFFER_ACCEPTED"
	NotificationOfferRejected NotificationType = "OFFER_REJECTED"
)
