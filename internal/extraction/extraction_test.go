package extraction

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/classifieds-scraper/internal/config"
	"github.com/williampepple1/classifieds-scraper/internal/logging"
)

const resultsPage = `<html><body><ul>
<li class="ad-listitem"><div class="aditem-main">
  <a href="/s-anzeige/rennrad/2801234567-217-1234">Rennrad</a>
  <i class="icon icon-small icon-calendar-open"></i> Heute, 10:15
  <p class="aditem-main--middle--price-shipping--price">1.234 € VB</p>
</div></li>
<li class="ad-listitem"><div class="aditem-main">
  <div class="badge-hint-pro-small-srp">PRO</div>
  <a href="/s-anzeige/pro/2801234568-217-1234">Pro</a>
  <i class="icon icon-small icon-calendar-open"></i> Heute
  <p class="aditem-main--middle--price-shipping--price">500 €</p>
</div></li>
<li class="ad-listitem lazyload-item   badge-topad is-topad"><div class="aditem-main">
  <a href="/s-anzeige/top/2801234569-217-1234">Top</a>
  <i class="icon icon-small icon-calendar-open"></i> Gestern
  <p class="aditem-main--middle--price-shipping--price">700 €</p>
</div></li>
<li class="ad-listitem"><div class="aditem-main">
  <a href="/s-anzeige/nodate/2801234570-217-1234">No date</a>
  <p class="aditem-main--middle--price-shipping--price">90 €</p>
</div></li>
<li class="ad-listitem"><div class="aditem-main">
  <a href="/s-anzeige/noprice/2801234571-217-1234">No price</a>
  <i class="icon icon-small icon-calendar-open"></i> 01.02.2025
</div></li>
<li class="ad-listitem"><div class="aditem-main">
  <a href="/s-anzeige/free/2801234572-217-1234">Zu verschenken</a>
  <i class="icon icon-small icon-calendar-open"></i> 01.02.2025
  <p class="aditem-main--middle--price-shipping--price">Zu verschenken</p>
</div></li>
<li class="ad-listitem"><div class="aditem-main">
  <a href="/s-anzeige/cheap/2801234573-217-1234">Cheap</a>
  <i class="icon icon-small icon-calendar-open"></i> 02.02.2025
  <p class="aditem-main--middle--price-shipping--price">0 €</p>
</div></li>
<li class="ad-listitem"><div class="aditem-main">
  <span>No link</span>
  <i class="icon icon-small icon-calendar-open"></i> 03.02.2025
  <p class="aditem-main--middle--price-shipping--price">VB</p>
</div></li>
<li class="ad-listitem"><div class="aditem-main">
  <a href="https://other.example/s-anzeige/abs/2801234574-217-1234">Absolute</a>
  <i class="icon icon-small icon-calendar-open"></i> 04.02.2025
  <p class="aditem-main--middle--price-shipping--price">VB</p>
</div></li>
</ul></body></html>`

func newTestExtractor(t *testing.T, mutate func(*config.SiteConfig)) *Extractor {
	t.Helper()
	cfg := config.Default().Site
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewExtractor(&cfg, logging.Discard())
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	return e
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestExtractListings(t *testing.T) {
	e := newTestExtractor(t, nil)
	got := e.ExtractListings(mustDoc(t, resultsPage), 1)

	want := []struct {
		url      string
		postedAt string
		price    int
	}{
		{"https://www.kleinanzeigen.de/s-anzeige/rennrad/2801234567-217-1234", "Heute, 10:15", 1234},
		{"https://other.example/s-anzeige/abs/2801234574-217-1234", "04.02.2025", 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].URL != w.url || got[i].PostedAt != w.postedAt || got[i].Price != w.price {
			t.Errorf("candidate %d = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestExtractListingsMinPrice(t *testing.T) {
	e := newTestExtractor(t, nil)

	tests := []struct {
		name     string
		minPrice int
		want     int
	}{
		{"zero keeps free items", 0, 3},
		{"one drops zero price", 1, 2},
		{"high threshold", 1000, 1},
		{"above all", 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ExtractListings(mustDoc(t, resultsPage), tt.minPrice)
			if len(got) != tt.want {
				t.Errorf("got %d candidates, want %d", len(got), tt.want)
			}
		})
	}
}

func TestExtractListingsXPathExclusion(t *testing.T) {
	e := newTestExtractor(t, func(c *config.SiteConfig) {
		c.Exclusions = []config.ExclusionRule{{XPath: "//a[contains(@href, 'rennrad')]"}}
	})

	got := e.ExtractListings(mustDoc(t, resultsPage), 1)
	for _, c := range got {
		if strings.Contains(c.URL, "rennrad") {
			t.Errorf("xpath exclusion not applied: %+v", c)
		}
	}
	// Without the default CSS rules the pro and top-ad items come back
	if len(got) != 3 {
		t.Errorf("got %d candidates, want 3", len(got))
	}
}

func TestNewExtractorRejectsBadRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.SiteConfig)
	}{
		{"bad xpath", func(c *config.SiteConfig) { c.Exclusions = []config.ExclusionRule{{XPath: "//a[@"}} }},
		{"empty rule", func(c *config.SiteConfig) { c.Exclusions = []config.ExclusionRule{{}} }},
		{"relative base", func(c *config.SiteConfig) { c.BaseURL = "/relative" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Site
			tt.mutate(&cfg)
			if _, err := NewExtractor(&cfg, logging.Discard()); !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("NewExtractor() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestExtractDetail(t *testing.T) {
	e := newTestExtractor(t, nil)

	tests := []struct {
		name    string
		html    string
		want    Detail
		wantErr error
	}{
		{
			name: "complete",
			html: `<div class="contentbox--vip boxedarticle no-shadow l-container-row">
				<h1>  Rennrad  Alu </h1><h2>1.234 €
				VB</h2></div>`,
			want: Detail{Title: "Rennrad Alu", PriceText: "1.234 € VB"},
		},
		{
			name:    "no container",
			html:    `<div class="contentbox"><h1>x</h1><h2>1 €</h2></div>`,
			wantErr: ErrNotListingPage,
		},
		{
			name:    "no title",
			html:    `<div class="contentbox--vip boxedarticle no-shadow l-container-row"><h2>1 €</h2></div>`,
			wantErr: ErrMissingField,
		},
		{
			name:    "no price",
			html:    `<div class="contentbox--vip boxedarticle no-shadow l-container-row"><h1>x</h1></div>`,
			wantErr: ErrMissingField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractDetail(mustDoc(t, tt.html))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ExtractDetail() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractDetail() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractDetail() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
