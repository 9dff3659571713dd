// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	apperrors "askdata/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
// Typed errors show their message and cause without the kind prefix.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	var e *apperrors.E
	if apperrors.As(err, &e) {
		msg = e.Message
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s: %s", context, Mask(msg))
}
