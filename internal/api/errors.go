package api

import (
	"errors"
	"net/http"

	"catalog-console/internal/client"
	"catalog-console/internal/domain"
)

// httpStatusFromError maps domain and backend errors to HTTP status codes.
// Backend (upstream) failures surface as 502 except upstream 404s, which stay
// 404 so a lookup of a vanished entity reads the same regardless of where the
// miss happened.
func httpStatusFromError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var badPrivilege *domain.InvalidPrivilegeError
	var missingName *domain.MissingEntityNameError
	var partial *domain.PartialRevokeError
	var upstream *client.APIError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.As(err, &badPrivilege),
		errors.As(err, &missingName):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &partial):
		return http.StatusMultiStatus
	case errors.As(err, &upstream):
		if upstream.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
