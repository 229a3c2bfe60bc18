package jackpot

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	xmlURL  = "https://lottery.test/xml"
	htmlURL = "https://lottery.test/results"
	apiURL  = "https://draws.test/v1/draws"
)

type fakeGetter struct {
	bodies  map[string]string
	errs    map[string]error
	calls   map[string]int
	headers map[string]http.Header
}

func newFakeGetter() *fakeGetter {
	return &fakeGetter{
		bodies:  map[string]string{},
		errs:    map[string]error{},
		calls:   map[string]int{},
		headers: map[string]http.Header{},
	}
}

func (f *fakeGetter) Get(_ context.Context, url string, header http.Header) ([]byte, error) {
	f.calls[url]++
	f.headers[url] = header
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("unexpected status: 404")
	}
	return []byte(body), nil
}

func newTestService(g Getter, ttl time.Duration) *Service {
	return NewService(g, URLs{XML: xmlURL, Results: htmlURL, API: apiURL}, ttl)
}

func TestFormatGBP(t *testing.T) {
	assert.Equal(t, "£1,234,567", FormatGBP(1234567))
	assert.Equal(t, "£17,000,000", FormatGBP(17000000))
	assert.Equal(t, "£999", FormatGBP(999))
}

func TestLive_XMLFirst(t *testing.T) {
	g := newFakeGetter()
	g.bodies[xmlURL] = `<?xml version="1.0"?>
<draw-results>
  <game>
    <next-draw-date>2026-03-10</next-draw-date>
    <next-draw-day> TUESDAY </next-draw-day>
    <next-estimated-jackpot>£87,000,000</next-estimated-jackpot>
  </game>
</draw-results>`

	info := newTestService(g, 0).Live(context.Background())
	require.True(t, info.OK, info.Error)
	assert.Equal(t, "national_lottery_xml", info.Source)
	assert.Equal(t, "£87,000,000", info.Amount)
	assert.Equal(t, "2026-03-10", info.NextDrawDate)
	assert.Equal(t, "Tuesday", info.NextDrawDay)
	assert.Equal(t, "£87,000,000", info.Raw)
	assert.Zero(t, g.calls[htmlURL])
	assert.Equal(t, htmlURL, g.headers[xmlURL].Get("Referer"))
	assert.NotEmpty(t, g.headers[xmlURL].Get("User-Agent"))
}

func TestLive_XMLFallbackKeys(t *testing.T) {
	g := newFakeGetter()
	g.bodies[xmlURL] = `<results><jackpot-amount>12345678</jackpot-amount></results>`

	info := newTestService(g, 0).Live(context.Background())
	require.True(t, info.OK)
	assert.Equal(t, "£12,345,678", info.Amount)
}

func TestLive_FallsBackToHTML(t *testing.T) {
	g := newFakeGetter()
	g.bodies[xmlURL] = `<results><next-draw-day>friday</next-draw-day></results>`
	g.bodies[htmlURL] = `<html><body><p>Estimated jackpot</p><span>£ 120 million</span></body></html>`

	info := newTestService(g, 0).Live(context.Background())
	require.True(t, info.OK)
	assert.Equal(t, "national_lottery_html", info.Source)
	assert.Equal(t, "£120,000,000", info.Amount)
	assert.Equal(t, "£ 120 million", info.Raw)
}

func TestLive_FallsBackToAPI(t *testing.T) {
	g := newFakeGetter()
	g.errs[xmlURL] = errors.New("max retries exceeded: server error: 503")
	g.bodies[htmlURL] = `<html>no numbers here</html>`
	g.bodies[apiURL] = `[{"date": "2026-03-06", "nextEstimatedJackpot": 45000000}]`

	info := newTestService(g, 0).Live(context.Background())
	require.True(t, info.OK)
	assert.Equal(t, "pedro_api", info.Source)
	assert.Equal(t, "£45,000,000", info.Amount)
	assert.Equal(t, "45000000", info.Raw)
}

func TestLive_AllFail(t *testing.T) {
	g := newFakeGetter()
	g.bodies[xmlURL] = `<broken`
	g.bodies[apiURL] = `{"detail": "none"}`

	info := newTestService(g, 0).Live(context.Background())
	assert.False(t, info.OK)
	assert.Equal(t, "none", info.Source)
	assert.Contains(t, info.Error, "national_lottery_xml: ")
	assert.Contains(t, info.Error, " | national_lottery_html: unexpected status: 404")
	assert.Contains(t, info.Error, " | pedro_api: No parseable jackpot in fallback API")
}

func TestLive_NoProviders(t *testing.T) {
	info := NewServiceWithProviders(0).Live(context.Background())
	assert.False(t, info.OK)
	assert.Equal(t, "No jackpot source available", info.Error)
}

func TestLive_CachesSuccess(t *testing.T) {
	g := newFakeGetter()
	g.bodies[apiURL] = `{"jackpot": "£17m"}`
	g.errs[xmlURL] = errors.New("down")
	g.errs[htmlURL] = errors.New("down")

	s := newTestService(g, time.Hour)
	first := s.Live(context.Background())
	second := s.Live(context.Background())
	require.True(t, first.OK)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, g.calls[apiURL])
	assert.Equal(t, "£17", first.Amount)
}

func TestScanHTML(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		amount int64
	}{
		{"comma amount", `Jackpot: £1,234,567 this Friday`, 1234567},
		{"million", `an estimated £17.5 MILLION`, 17500000},
		{"short m", `£130m rollover`, 130000000},
		{"jackpot context", `jackpot is <b>£</b>`, 0},
		{"nothing", `no prize data`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, _ := scanHTML(tt.body)
			assert.Equal(t, tt.amount, amount)
		})
	}
}
