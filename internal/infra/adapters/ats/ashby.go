package ats

import (
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
)

// Ashby renders its application form client-side under jobs.ashbyhq.com.
// Field ids follow the _systemfield_ convention.
func NewAshbyFiller(logger *zerolog.Logger) *strategyFiller {
	layout := formLayout{
		provider: model.ProviderAshby,
		fields: contactFields(
			[]string{`#_systemfield_name`, `input[name="_systemfield_name"]`},
			[]string{`#_systemfield_email`, `input[name="_systemfield_email"]`, `input[type="email"]`},
			[]string{`#_systemfield_phone`, `input[type="tel"]`},
			[]string{`input[name*="linkedin" i]`},
			[]string{`#_systemfield_location`, `input[name*="location" i]`},
		),
		uploads: []string{
			`#_systemfield_resume`, `input[type="file"]`,
		},
		submits: []string{
			`button[type="submit"]`, `.ashby-application-form-submit-button`,
		},
	}
	return newStrategyFiller(layout, logger)
}
