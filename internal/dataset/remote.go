package dataset

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/httputil"
)

// URLSource downloads a CSV export over HTTP
type URLSource struct {
	url    string
	client *httputil.Client
	log    zerolog.Logger
}

// NewURLSource 새 URL 소스 생성
func NewURLSource(url string, client *httputil.Client, log zerolog.Logger) *URLSource {
	return &URLSource{
		url:    url,
		client: client,
		log:    log.With().Str("component", "dataset.url").Logger(),
	}
}

// Name identifies the source in logs and errors.
func (s *URLSource) Name() string {
	return "url:" + s.url
}

// Load downloads and parses the export.
func (s *URLSource) Load(ctx context.Context) ([]contracts.RawListing, error) {
	body, err := s.client.GetBytes(ctx, s.url)
	if err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Err: err}
	}
	return parseAndLog(s.Name(), bytes.NewReader(body), ParseCSV, s.log)
}
