package sources

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
)

var _ adapter.JobSource = (*GreenhouseSource)(nil)

// GreenhouseSource polls the public board API:
// https://boards-api.greenhouse.io/v1/boards/{org}/jobs?content=true
type GreenhouseSource struct {
	org     string
	baseURL string
	client  *http.Client
	log     *zerolog.Logger
}

func NewGreenhouseSource(org string, client *http.Client, logger *zerolog.Logger) *GreenhouseSource {
	l := logger.With().Str("component", "GreenhouseSource").Str("org", org).Logger()
	return &GreenhouseSource{
		org:     org,
		baseURL: "https://boards-api.greenhouse.io",
		client:  client,
		log:     &l,
	}
}

func (s *GreenhouseSource) Name() string { return "greenhouse:" + s.org }

type greenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	CompanyName string `json:"company_name"`
}

func (s *GreenhouseSource) FetchJobs(ctx context.Context) ([]model.RawJob, error) {
	url := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", s.baseURL, s.org)
	var payload struct {
		Jobs []greenhouseJob `json:"jobs"`
	}
	if err := fetchJSON(ctx, s.client, url, &payload); err != nil {
		return nil, err
	}

	out := make([]model.RawJob, 0, len(payload.Jobs))
	for _, j := range payload.Jobs {
		company := j.CompanyName
		if company == "" {
			company = s.org
		}
		out = append(out, model.RawJob{
			Provider:      model.ProviderGreenhouse,
			ProviderJobID: strconv.FormatInt(j.ID, 10),
			Title:         j.Title,
			Company:       company,
			Location:      j.Location.Name,
			IsRemote:      looksRemote(j.Location.Name),
			Description:   j.Content,
			URL:           j.AbsoluteURL,
		})
	}
	s.log.Debug().Int("count", len(out)).Msg("board fetched")
	return out, nil
}
