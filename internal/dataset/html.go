package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/httputil"
)

// ParseHTMLTable reads the first <table> of an HTML export. The first row is the header;
// rows whose cell count differs from it are skipped.
func ParseHTMLTable(r io.Reader) (ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return ParseResult{}, fmt.Errorf("no <table> found")
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return ParseResult{}, fmt.Errorf("table has no rows")
	}

	header := cellTexts(rows.First())
	cols, err := mapHeader(header)
	if err != nil {
		return ParseResult{}, err
	}

	var res ParseResult
	rows.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		cells := cellTexts(tr)
		if len(cells) != cols.width {
			res.Malformed++
			return
		}
		res.Rows = append(res.Rows, cols.build(cells))
	})
	return res, nil
}

func cellTexts(tr *goquery.Selection) []string {
	var out []string
	tr.Find("th, td").Each(func(_ int, c *goquery.Selection) {
		out = append(out, strings.TrimSpace(c.Text()))
	})
	return out
}

// HTMLSource loads an HTML table export from a file or URL (URL wins when both are set)
type HTMLSource struct {
	path   string
	url    string
	client *httputil.Client
	log    zerolog.Logger
}

// NewHTMLSource 새 HTML 소스 생성
func NewHTMLSource(path, url string, client *httputil.Client, log zerolog.Logger) *HTMLSource {
	return &HTMLSource{
		path:   path,
		url:    url,
		client: client,
		log:    log.With().Str("component", "dataset.html").Logger(),
	}
}

// Name identifies the source in logs and errors.
func (s *HTMLSource) Name() string {
	if s.url != "" {
		return "html:" + s.url
	}
	return "html:" + s.path
}

// Load fetches and parses the table.
func (s *HTMLSource) Load(ctx context.Context) ([]contracts.RawListing, error) {
	var data []byte
	var err error
	if s.url != "" {
		data, err = s.client.GetBytes(ctx, s.url)
	} else {
		data, err = os.ReadFile(s.path)
	}
	if err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Err: err}
	}
	return parseAndLog(s.Name(), bytes.NewReader(data), ParseHTMLTable, s.log)
}
