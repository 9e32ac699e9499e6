package ats

import (
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
)

// Lever postings live under jobs.lever.co; the application form posts named
// fields without ids, so name attributes are the primary candidates.
func NewLeverFiller(logger *zerolog.Logger) *strategyFiller {
	layout := formLayout{
		provider: model.ProviderLever,
		fields: contactFields(
			[]string{`input[name="name"]`, `.application-question input[placeholder*="name" i]`},
			[]string{`input[name="email"]`, `input[type="email"]`},
			[]string{`input[name="phone"]`, `input[type="tel"]`},
			[]string{`input[name="urls[LinkedIn]"]`, `input[name*="linkedin" i]`},
			[]string{`input[name="location"]`},
		),
		uploads: []string{
			`#resume-upload-input`, `input[name="resume"]`, `input[type="file"]`,
		},
		submits: []string{
			`#btn-submit`, `button[type="submit"].template-btn-submit`, `button[type="submit"]`,
		},
	}
	return newStrategyFiller(layout, logger)
}
