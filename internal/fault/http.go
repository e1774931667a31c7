package fault

import "net/http"

// HTTPStatus maps a fault kind to the transport status handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusUnprocessableEntity
	case Conflict:
		return http.StatusConflict
	case InsufficientFunds:
		return http.StatusUnprocessableEntity
	case Unauthorized:
		return http.StatusForbidden
	case Gateway:
		return http.StatusBadGateway
	case Configuration:
		return http.StatusInternalServerError
	case NotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
