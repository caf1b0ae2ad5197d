package httpadapter

import (
	"net/http"

	"github.com/hhhafather/data-agent/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrUnsupportedCategory):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrNoFile):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrLoad),
		domain.IsKind(err, domain.ErrDecode),
		domain.IsKind(err, domain.ErrNoSubSource):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
