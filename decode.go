package dentcloud

import "encoding/json"

// decodeResponse decodes body as T. The API answers 200 for failures too, so
// when body is not a T it is tried as an error envelope before giving up.
func decodeResponse[T any](body []byte) (T, error) {
	var target T
	err := json.Unmarshal(body, &target)
	if err == nil {
		return target, nil
	}

	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil {
		return target, &APIError{Message: apiErr.Error}
	}

	// Only the first failure is interesting; the error envelope not matching
	// is expected when the body is neither shape.
	return target, &ParseError{Err: err}
}
