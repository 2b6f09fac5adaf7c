package analytics

import (
	"strings"

	"shortlinks/internal/models"
)

const (
	unknownOS      = "Unknown"
	unknownBrowser = "Other"
	UnknownAgent   = "Unknown"
)

// rule maps any of its needles to label. Tables are evaluated top to bottom
// and the first hit wins; overlapping needles make the order significant.
type rule struct {
	label   string
	needles []string
}

var osRules = []rule{
	{"Windows", []string{"windows"}},
	{"macOS", []string{"mac"}},
	{"Linux", []string{"linux"}},
	{"iOS", []string{"iphone"}},
	{"Android", []string{"android"}},
}

var browserRules = []rule{
	{"Chrome", []string{"chrome"}},
	{"Firefox", []string{"firefox"}},
	{"Safari", []string{"safari"}},
	{"Edge", []string{"edge"}},
}

var formFactorRules = []rule{
	{models.FormFactorMobile, []string{"mobile", "android", "iphone"}},
	{models.FormFactorTablet, []string{"tablet", "ipad"}},
}

// ClassifyDevice is a substring heuristic over the raw User-Agent, not a
// parser.
func ClassifyDevice(userAgent string) models.DeviceProfile {
	ua := strings.ToLower(userAgent)
	return models.DeviceProfile{
		OS:      match(osRules, ua, unknownOS),
		Browser: match(browserRules, ua, unknownBrowser),
		Type:    match(formFactorRules, ua, models.FormFactorDesktop),
	}
}

func match(rules []rule, ua, fallback string) string {
	for _, r := range rules {
		for _, needle := range r.needles {
			if strings.Contains(ua, needle) {
				return r.label
			}
		}
	}
	return fallback
}
