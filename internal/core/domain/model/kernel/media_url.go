package kernel

import (
	"fmt"
	"net/url"
	"strings"

	"handoff/internal/pkg/errs"
)

// ValidateMediaURL checks raw is an absolute http(s) URL of an uploaded photo.
// Uploading itself happens before the call; only the reference is stored.
func ValidateMediaURL(name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errs.NewValueIsRequiredError(name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%q is not an absolute http(s) URL", raw))
	}
	return nil
}
