package dentcloud

import "context"

// Topics fetches the list of topics that can be requested with Data.
//
//	{
//	   "success": true,
//	   "topics": [
//	       {"unit": "kWh", "requestKey": "kWHNet", "description": "Power.Net Kilowatt Hours."},
//	       {"unit": "A", "requestKey": "A", "description": "Current. Amperes."}
//	   ]
//	}
func (s *Session) Topics(ctx context.Context) (Topics, error) {
	return send[Topics](ctx, s, Query{{Key: "request", Value: "getTopics"}})
}
