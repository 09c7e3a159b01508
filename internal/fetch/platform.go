package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board whose page layout is known.
type Platform string

// Known platforms
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

type profile struct {
	hosts   []string
	content []string
	noise   []string
}

var profiles = map[Platform]profile{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", ".voluntary-self-id-wrapper", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	PlatformWorkday: {
		hosts:   []string{"workday.com", "myworkdayjobs.com"},
		content: []string{"[data-automation-id='jobDescription']", ".gwt-HTML", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
}

// genericContent is tried on unknown boards.
var genericContent = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// commonNoise is removed on every board: application forms, EEO and legal
// sections, share buttons and consent banners.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board from a posting URL.
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, p := range []Platform{PlatformGreenhouse, PlatformLever, PlatformWorkday} {
		for _, h := range profiles[p].hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p
			}
		}
	}
	return PlatformUnknown
}

// ContentSelectors returns the description selectors for a platform, most
// specific first. Unknown platforms get generic job board selectors.
func ContentSelectors(p Platform) []string {
	if prof, ok := profiles[p]; ok {
		return prof.content
	}
	return genericContent
}

// NoiseSelectors returns the elements to remove before extracting text.
func NoiseSelectors(p Platform) []string {
	out := append([]string{}, commonNoise...)
	return append(out, profiles[p].noise...)
}
