package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/company/job-id", PlatformLever},
		{"https://company.wd5.myworkdayjobs.com/en-US/External", PlatformWorkday},
		{"https://workday.com/jobs", PlatformWorkday},
		{"https://notgreenhouse.io.example.com/jobs", PlatformUnknown},
		{"https://example.com/careers/123", PlatformUnknown},
		{"::not a url", PlatformUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.url))
		})
	}
}

func TestSelectors(t *testing.T) {
	assert.Equal(t, ".job__description.body", ContentSelectors(PlatformGreenhouse)[0])
	assert.Equal(t, genericContent, ContentSelectors(PlatformUnknown))

	noise := NoiseSelectors(PlatformLever)
	assert.Contains(t, noise, "form")
	assert.Contains(t, noise, ".posting-apply")
	assert.Equal(t, commonNoise, NoiseSelectors(PlatformUnknown))
	assert.Len(t, commonNoise, 13, "common list not mutated by appends")
}
