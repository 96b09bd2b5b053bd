// Package sl holds small helpers for building slog attributes.
package sl

import "log/slog"

// Err returns an attribute carrying the error text under the "error" key.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	return slog.String("error", err.Error())
}
