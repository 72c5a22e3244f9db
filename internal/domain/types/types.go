package types

type ServiceMode string

// Matching - HTTP API for ride requests, negotiations, fares, location and notifications
// Location ingest - consumes device heartbeats from Kafka into the location registry
const (
	MatchingService       ServiceMode = "matching"
	LocationIngestService ServiceMode = "location-ingest"
)

type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RiderRole  UserRole = "RIDER"
	DriverRole UserRole = "DRIVER"
	AdminRole  UserRole = "ADMIN"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestMatched   RequestStatus = "MATCHED"
	RequestCancelled RequestStatus = "CANCELLED"
	RequestExpired   RequestStatus = "EXPIRED"
)

// IsTerminal reports whether no further transitions are allowed.
func (s RequestStatus) IsTerminal() bool {
	return s != RequestPending
}

type NegotiationStatus string

const (
	NegotiationOpen     NegotiationStatus = "OPEN"
	NegotiationAccepted NegotiationStatus = "ACCEPTED"
	NegotiationRejected NegotiationStatus = "REJECTED"
)

func (s NegotiationStatus) IsTerminal() bool {
	return s == NegotiationAccepted || s == NegotiationRejected
}

type RideStatus string

const (
	RideActive    RideStatus = "ACTIVE"
	RideFull      RideStatus = "FULL"
	RideCancelled RideStatus = "CANCELLED"
	RideCompleted RideStatus = "COMPLETED"
)
