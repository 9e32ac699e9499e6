package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
)

var _ adapter.JobSource = (*AshbySource)(nil)

// AshbySource polls the public posting API:
// https://api.ashbyhq.com/posting-api/job-board/{org}
type AshbySource struct {
	org     string
	baseURL string
	client  *http.Client
	log     *zerolog.Logger
}

func NewAshbySource(org string, client *http.Client, logger *zerolog.Logger) *AshbySource {
	l := logger.With().Str("component", "AshbySource").Str("org", org).Logger()
	return &AshbySource{
		org:     org,
		baseURL: "https://api.ashbyhq.com",
		client:  client,
		log:     &l,
	}
}

func (s *AshbySource) Name() string { return "ashby:" + s.org }

type ashbyJob struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Location       string `json:"location"`
	IsRemote       bool   `json:"isRemote"`
	JobURL         string `json:"jobUrl"`
	DescriptionTxt string `json:"descriptionPlain"`
}

func (s *AshbySource) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	url := fmt.Sprintf("%s/posting-api/job-board/%s?includeCompensation=false", s.baseURL, s.org)
	var payload struct {
		Jobs []ashbyJob `json:"jobs"`
	}
	if err := fetchJSON(ctx, s.client, url, &payload); err != nil {
		return nil, err
	}

	out := make([]model.RawJob, 0, len(payload.Jobs))
	for _, j := range payload.Jobs {
		out = append(out, model.RawJob{
			Provider:      model.ProviderAshby,
			ProviderJobID: j.ID,
			Title:         j.Title,
			Company:       s.org,
			Location:      j.Location,
			IsRemote:      j.IsRemote || looksRemote(j.Location),
			Description:   j.DescriptionTxt,
			URL:           j.JobURL,
		})
	}
	s.log.Debug().Int("count", len(out)).Msg("job board fetched")
	return out, nil
}
