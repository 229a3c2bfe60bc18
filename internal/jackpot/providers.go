package jackpot

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rewired-gh/luckylogic/internal/draws"
)

const (
	sourceXML  = "national_lottery_xml"
	sourceHTML = "national_lottery_html"
	sourceAPI  = "pedro_api"

	rawLimit  = 500
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

func browserHeader(accept, referer string) http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", accept)
	if referer != "" {
		h.Set("Referer", referer)
	}
	return h
}

func truncate(b []byte) string {
	if len(b) > rawLimit {
		b = b[:rawLimit]
	}
	return string(b)
}

type xmlProvider struct {
	get     Getter
	url     string
	referer string
}

func (p *xmlProvider) Name() string { return sourceXML }

func (p *xmlProvider) Fetch(ctx context.Context) Info {
	body, err := p.get.Get(ctx, p.url, browserHeader("application/xml,text/xml;q=0.9,*/*;q=0.8", p.referer))
	if err != nil {
		return Info{Source: sourceXML, Error: err.Error()}
	}

	fields, err := findXMLText(body, "next-estimated-jackpot", "jackpot-amount", "jackpotAmount", "next-draw-date", "next-draw-day")
	if err != nil {
		return Info{Source: sourceXML, Raw: truncate(body), Error: err.Error()}
	}

	info := Info{
		Source:       sourceXML,
		NextDrawDate: strings.TrimSpace(fields["next-draw-date"]),
		NextDrawDay:  cases.Title(language.English).String(strings.TrimSpace(fields["next-draw-day"])),
	}
	for _, name := range []string{"next-estimated-jackpot", "jackpot-amount", "jackpotAmount"} {
		if v := fields[name]; v != "" {
			info.Raw = v
			break
		}
	}
	amount, ok := draws.DigitsOnly(info.Raw)
	if !ok {
		info.Error = "No parseable jackpot in XML"
		return info
	}
	info.OK = true
	info.Amount = FormatGBP(amount)
	return info
}

// findXMLText returns the text of the first element with each local name,
// searching the whole document.
func findXMLText(body []byte, names ...string) (map[string]string, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	found := make(map[string]string, len(names))

	dec := xml.NewDecoder(bytes.NewReader(body))
	var capture string
	var text strings.Builder
	depth, captureDepth := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if capture == "" && want[t.Name.Local] {
				if _, seen := found[t.Name.Local]; !seen {
					capture, captureDepth = t.Name.Local, depth
					text.Reset()
				}
			}
		case xml.CharData:
			if capture != "" && depth == captureDepth {
				text.Write(t)
			}
		case xml.EndElement:
			if capture != "" && depth == captureDepth {
				found[capture] = text.String()
				capture = ""
			}
			depth--
		}
	}
	if depth != 0 || len(body) == 0 {
		return nil, errors.New("malformed XML document")
	}
	return found, nil
}

var htmlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)£\s*(\d{1,3}(?:,\d{3})+)`),
	regexp.MustCompile(`(?i)£\s*(\d+(?:\.\d+)?)\s*(million|m)\b`),
	regexp.MustCompile(`(?i)jackpot[^£\d]{0,40}£\s*(\d+(?:,\d{3})*)`),
}

type htmlProvider struct {
	get Getter
	url string
}

func (p *htmlProvider) Name() string { return sourceHTML }

func (p *htmlProvider) Fetch(ctx context.Context) Info {
	body, err := p.get.Get(ctx, p.url, browserHeader("text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", p.url))
	if err != nil {
		return Info{Source: sourceHTML, Error: err.Error()}
	}

	amount, raw := scanHTML(string(body))
	if amount == 0 {
		return Info{Source: sourceHTML, Error: "No parseable jackpot in HTML"}
	}
	return Info{OK: true, Source: sourceHTML, Amount: FormatGBP(amount), Raw: raw}
}

// scanHTML tries each pattern in order and returns the first non-zero amount.
func scanHTML(body string) (int64, string) {
	for _, re := range htmlPatterns {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		var amount int64
		if len(m) > 2 && (strings.EqualFold(m[2], "million") || strings.EqualFold(m[2], "m")) {
			if f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
				amount = int64(f * 1_000_000)
			}
		} else {
			amount, _ = draws.DigitsOnly(m[1])
		}
		if amount != 0 {
			return amount, m[0]
		}
	}
	return 0, ""
}

var apiJackpotKeys = []string{"nextEstimatedJackpot", "next_estimated_jackpot", "estimatedJackpot", "jackpot"}

type apiProvider struct {
	get Getter
	url string
}

func (p *apiProvider) Name() string { return sourceAPI }

func (p *apiProvider) Fetch(ctx context.Context) Info {
	body, err := p.get.Get(ctx, p.url, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return Info{Source: sourceAPI, Error: err.Error()}
	}
	if !gjson.ValidBytes(body) {
		return Info{Source: sourceAPI, Raw: truncate(body), Error: "invalid JSON from draws API"}
	}

	latest := gjson.ParseBytes(body)
	if latest.IsArray() {
		latest = latest.Get("0")
	}

	info := Info{Source: sourceAPI}
	if latest.IsObject() {
		for _, key := range apiJackpotKeys {
			if v := latest.Get(key); v.Exists() && v.Type != gjson.Null && v.String() != "" {
				info.Raw = v.String()
				break
			}
		}
	}
	amount, ok := draws.DigitsOnly(info.Raw)
	if !ok {
		info.Error = "No parseable jackpot in fallback API"
		return info
	}
	info.OK = true
	info.Amount = FormatGBP(amount)
	return info
}
