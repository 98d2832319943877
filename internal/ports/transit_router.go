package ports

import "context"

// TransitRouter computes an estimated public-transit travel duration
// between two locations ("lat,long" pairs or routable place names).
type TransitRouter interface {
	// FetchDurationMinutes returns the rounded travel time in minutes.
	// ok is false when the routing response carried no usable connection;
	// that is not an error. Transport failures are returned as errors.
	FetchDurationMinutes(ctx context.Context, origin, destination string) (minutes int, ok bool, err error)
}
