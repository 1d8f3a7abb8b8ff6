package httpx

import (
	"net/http"

	"github.com/sundayezeilo/shortlinks/internal/errx"
)

const internalErrorMessage = "internal server error"

// KindToStatus maps errx.Kind to HTTP status codes.
func KindToStatus(kind errx.Kind) int {
	switch kind {
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.Conflict:
		return http.StatusConflict
	case errx.Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show a client for err. Storage and
// internal faults collapse to a generic message so driver text never leaks.
func PublicMessage(err error) string {
	switch errx.KindOf(err) {
	case errx.Invalid, errx.Conflict, errx.Unauthenticated:
		return errx.Message(err)
	default:
		return internalErrorMessage
	}
}

// WriteError writes the failure envelope matching err's kind.
func WriteError(w http.ResponseWriter, err error) {
	WriteFailure(w, KindToStatus(errx.KindOf(err)), PublicMessage(err))
}
