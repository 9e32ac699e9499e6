package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"job-autopilot/internal/config"
	"job-autopilot/internal/domain"
	"job-autopilot/internal/domain/model"
	"job-autopilot/internal/domain/ports/adapter"
)

// FromConfig builds one JobSource per configured board. Unknown providers are
// rejected at startup rather than silently skipped at ingest time.
func FromConfig(cfgs []config.SourceConfig, logger *zerolog.Logger) ([]adapter.JobSource, error) {
	out := make([]adapter.JobSource, 0, len(cfgs))
	client := &http.Client{Timeout: 30 * time.Second}
	for _, c := range cfgs {
		switch model.Provider(c.Provider) {
		case model.ProviderGreenhouse:
			out = append(out, NewGreenhouseSource(c.Org, client, logger))
		case model.ProviderLever:
			out = append(out, NewLeverSource(c.Org, client, logger))
		case model.ProviderAshby:
			out = append(out, NewAshbySource(c.Org, client, logger))
		default:
			return nil, fmt.Errorf("%w: source provider %q", domain.ErrInvalidArgument, c.Provider)
		}
	}
	return out, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return domain.Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Transient(fmt.Errorf("GET %s: status %d", url, resp.StatusCode))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func looksRemote(location string) bool {
	return strings.Contains(strings.ToLower(location), "remote")
}
