package ats

import (
	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
)

// Greenhouse hosts applications under boards.greenhouse.io with stable input
// ids; the data-qa attributes cover their newer embedded boards.
func NewGreenhouseFiller(logger *zerolog.Logger) *strategyFiller {
	layout := formLayout{
		provider: model.ProviderGreenhouse,
		fields: contactFields(
			[]string{`#first_name`, `input[name="job_application[first_name]"]`, `input[autocomplete="name"]`},
			[]string{`#email`, `input[name="job_application[email]"]`, `input[type="email"]`},
			[]string{`#phone`, `input[name="job_application[phone]"]`, `input[type="tel"]`},
			[]string{`input[name*="linkedin" i]`, `input[data-qa="linkedin"]`},
			[]string{`#candidate-location`, `input[name*="location" i]`},
		),
		uploads: []string{
			`#resume`, `input[name="job_application[resume]"]`, `input[type="file"]`,
		},
		submits: []string{
			`#submit_app`, `button[type="submit"]`, `input[type="submit"]`,
		},
	}
	return newStrategyFiller(layout, logger)
}
