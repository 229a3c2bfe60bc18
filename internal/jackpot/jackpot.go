// Package jackpot looks up the next EuroMillions jackpot estimate from a
// chain of public sources.
package jackpot

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rewired-gh/luckylogic/internal/logger"
)

// Default source URLs.
const (
	NationalLotteryXMLURL     = "https://www.national-lottery.co.uk/results/euromillions/draw-history/xml"
	NationalLotteryResultsURL = "https://www.national-lottery.co.uk/results/euromillions"
	DrawsAPIURL               = "https://euromillions.api.pedromealha.dev/v1/draws"
)

// Getter fetches a URL body. drawsource.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// Info is the outcome of a jackpot lookup. When OK is false, Error says why.
type Info struct {
	OK           bool   `json:"ok"`
	Source       string `json:"source"`
	Amount       string `json:"jackpot_amount,omitempty"`
	NextDrawDate string `json:"next_draw_date,omitempty"`
	NextDrawDay  string `json:"next_draw_day,omitempty"`
	Raw          string `json:"raw,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Provider is one jackpot source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context) Info
}

// URLs configures the provider chain. Empty fields use the defaults.
type URLs struct {
	XML     string
	Results string
	API     string
}

// Service queries providers in order and returns the first success.
// Successful lookups are cached for cacheTTL.
type Service struct {
	providers []Provider
	cacheTTL  time.Duration

	mu        sync.Mutex
	cached    Info
	fetchedAt time.Time
}

// NewService builds the standard chain: National Lottery XML, then the
// results page, then the draws API.
func NewService(g Getter, urls URLs, cacheTTL time.Duration) *Service {
	if urls.XML == "" {
		urls.XML = NationalLotteryXMLURL
	}
	if urls.Results == "" {
		urls.Results = NationalLotteryResultsURL
	}
	if urls.API == "" {
		urls.API = DrawsAPIURL
	}
	return NewServiceWithProviders(cacheTTL,
		&xmlProvider{get: g, url: urls.XML, referer: urls.Results},
		&htmlProvider{get: g, url: urls.Results},
		&apiProvider{get: g, url: urls.API},
	)
}

// NewServiceWithProviders builds a service over an explicit chain.
func NewServiceWithProviders(cacheTTL time.Duration, providers ...Provider) *Service {
	return &Service{providers: providers, cacheTTL: cacheTTL}
}

// Live returns the first successful provider result. When every provider
// fails, the errors are joined in chain order.
func (s *Service) Live(ctx context.Context) Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached.OK && s.cacheTTL > 0 && time.Since(s.fetchedAt) < s.cacheTTL {
		return s.cached
	}

	var errs []string
	for _, p := range s.providers {
		info := p.Fetch(ctx)
		if info.OK {
			s.cached, s.fetchedAt = info, time.Now()
			return info
		}
		msg := info.Error
		if msg == "" {
			msg = "unknown error"
		}
		logger.Debug("Jackpot source %s failed: %s", info.Source, msg)
		errs = append(errs, info.Source+": "+msg)
	}

	out := Info{Source: "none", Error: "No jackpot source available"}
	if len(errs) > 0 {
		out.Error = strings.Join(errs, " | ")
	}
	return out
}

// FormatGBP renders an amount in whole pounds, e.g. £1,234,567.
func FormatGBP(amount int64) string {
	return "£" + humanize.Comma(amount)
}
