package validation

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugc = bluemonday.UGCPolicy()

// Sanitize strips markup that could execute in a browser while keeping
// basic formatting. Clients render comments and descriptions as HTML.
func Sanitize(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
