package sources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
)

var _ adapter.JobSource = (*LeverSource)(nil)

// LeverSource polls the public postings API:
// https://api.lever.co/v0/postings/{org}?mode=json
type LeverSource struct {
	org     string
	baseURL string
	client  *http.Client
	log     *zerolog.Logger
}

func NewLeverSource(org string, client *http.Client, logger *zerolog.Logger) *LeverSource {
	l := logger.With().Str("component", "LeverSource").Str("org", org).Logger()
	return &LeverSource{
		org:     org,
		baseURL: "https://api.lever.co",
		client:  client,
		log:     &l,
	}
}

func (s *LeverSource) Name() string { return "lever:" + s.org }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location string `json:"location"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
	WorkplaceType    string `json:"workplaceType"`
}

func (s *LeverSource) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	url := fmt.Sprintf("%s/v0/postings/%s?mode=json", s.baseURL, s.org)
	var postings []leverPosting
	if err := fetchJSON(ctx, s.client, url, &postings); err != nil {
		return nil, err
	}

	out := make([]model.RawJob, 0, len(postings))
	for _, p := range postings {
		out = append(out, model.RawJob{
			Provider:      model.ProviderLever,
			ProviderJobID: p.ID,
			Title:         p.Text,
			Company:       s.org,
			Location:      p.Categories.Location,
			IsRemote:      p.WorkplaceType == "remote" || looksRemote(p.Categories.Location),
			Description:   p.DescriptionPlain,
			URL:           p.HostedURL,
		})
	}
	s.log.Debug().Int("count", len(out)).Msg("postings fetched")
	return out, nil
}
