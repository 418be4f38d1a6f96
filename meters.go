package dentcloud

import "context"

// Meters fetches the meters available to the credentials.
//
//	{"success":true,"meters":["P482311252","P482102272","P482102270"]}
func (s *Session) Meters(ctx context.Context) (Meters, error) {
	return send[Meters](ctx, s, Query{{Key: "request", Value: "getMeters"}})
}
