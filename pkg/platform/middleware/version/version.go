// Package version provides middleware for document schema version negotiation.
package version

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"pcps/pkg/requestcontext"
)

// Header carries the document schema version on requests and responses.
const Header = "X-PCPS-Version"

// versionErrorResponse represents the JSON error response for version-related errors.
type versionErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Require rejects requests that declare a schema version other than supported.
// Requests without the header are accepted. Every response advertises the
// supported version.
//
// Usage:
//
//	r.Use(version.Require(models.Version, logger))
func Require(supported string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(Header, supported)

			requested := r.Header.Get(Header)
			if requested != "" && requested != supported {
				ctx := r.Context()
				logger.WarnContext(ctx, "unsupported document version",
					"request_id", requestcontext.RequestID(ctx),
					"requested", requested,
					"supported", supported,
				)
				writeVersionError(w, http.StatusBadRequest, "unsupported_version",
					"this server speaks document version "+supported)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeVersionError writes a JSON error response for version-related errors.
func writeVersionError(w http.ResponseWriter, statusCode int, errCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := versionErrorResponse{
		Error:            errCode,
		ErrorDescription: description,
	}
	_ = json.NewEncoder(w).Encode(resp)
}
