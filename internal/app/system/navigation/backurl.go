// Package navigation holds the sidebar menu tree and safe return-URL
// handling.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/dashboard/db/els").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/edit", "/memo").
	// These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string

	// PreserveQueryParam is an optional query parameter to preserve in the fallback URL.
	// For example, "page" keeps the list page the user came from.
	PreserveQueryParam string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks both the query parameter and form value for "return", validates
// the URL is safe (not an open redirect), optionally validates the prefix,
// and excludes specified subpaths to prevent redirect loops.
//
// Example usage:
//
//	url := navigation.SafeBackURL(r, navigation.LeadsBackURL("/dashboard/db/els"))
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	// Try query parameter first, then form value
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}

	// Validate against allowed prefix if specified
	if ret != "" {
		valid := true

		if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
			valid = false
		}

		// Check excluded subpaths
		for _, excluded := range opts.ExcludedSubpaths {
			if strings.Contains(ret, excluded) {
				valid = false
				break
			}
		}

		if valid {
			return ret
		}
	}

	// Build fallback URL, optionally preserving a query parameter
	fallback := opts.Fallback
	if opts.PreserveQueryParam != "" {
		param := query.Get(r, opts.PreserveQueryParam)
		if param == "" {
			param = strings.TrimSpace(r.FormValue(opts.PreserveQueryParam))
		}
		if param != "" && param != "1" {
			if strings.Contains(fallback, "?") {
				fallback += "&" + opts.PreserveQueryParam + "=" + param
			} else {
				fallback += "?" + opts.PreserveQueryParam + "=" + param
			}
		}
	}

	return fallback
}

// Back URL configurations for LeadHub screens.
var (
	// LoginReturn validates the post-login destination.
	LoginReturn = BackURLOptions{
		AllowedPrefix:    "/dashboard",
		ExcludedSubpaths: []string{"/edit", "/memo", "/sms", "/import", "/bulk"},
		Fallback:         "/dashboard",
	}

	// AccountsBackURL returns options for the accounts screen.
	AccountsBackURL = BackURLOptions{
		AllowedPrefix:      "/dashboard/All/user-management",
		ExcludedSubpaths:   []string{"/edit", "/new", "/bulk"},
		Fallback:           "/dashboard/All/user-management",
		PreserveQueryParam: "page",
	}
)

// LeadsBackURL returns options for the lead screen rooted at base.
func LeadsBackURL(base string) BackURLOptions {
	return BackURLOptions{
		AllowedPrefix:      base,
		ExcludedSubpaths:   []string{"/edit", "/memo", "/sms", "/import", "/bulk"},
		Fallback:           base,
		PreserveQueryParam: "page",
	}
}
