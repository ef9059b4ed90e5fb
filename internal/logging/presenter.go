// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	apperrors "sqlpilot/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
// Backend details are preferred over wrapped error text.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(apperrors.UserMessage(err)))
}
