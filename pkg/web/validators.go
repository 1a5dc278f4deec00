package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseQueryInt32 parses an optional integer query parameter.
// Returns the default when the parameter is absent, and false after writing
// a 400 response when it is present but not an integer.
func ParseQueryInt32(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int32) (int32, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return int32(intValue), true
}
