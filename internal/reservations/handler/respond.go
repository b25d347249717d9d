package handler

import (
	"net/http"

	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/locale"
	"slotbook/pkg/logger"
)

// writeError renders err in the caller's language. The code stays the same in
// every language.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, handler string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Error("Request failed",
			"handler", handler,
			"code", appErr.Code,
			"path", r.URL.Path,
			"error", appErr,
		)
	}

	localized := *appErr
	localized.Message = locale.Translate(locale.FromRequest(r), appErr.Message)
	if writeErr := httputil.WriteError(w, &localized); writeErr != nil {
		log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
