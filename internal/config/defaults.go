package config

// DefaultUserAgent is sent with every request
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/51.0.2704.103 Safari/537.36"

// DefaultBaseURL is the origin prefixed to relative listing links
const DefaultBaseURL = "https://www.kleinanzeigen.de"

// DefaultViewsPath is the view counter endpoint, %s is the listing id
const DefaultViewsPath = "/s-vac-inc-get.json?adId=%s"

// DefaultSelectors match the current kleinanzeigen markup
var DefaultSelectors = SelectorConfig{
	Item:        "div.aditem-main",
	Date:        "i.icon.icon-small.icon-calendar-open",
	Price:       "p.aditem-main--middle--price-shipping--price",
	Anchor:      "a",
	DetailBox:   "div.contentbox--vip.boxedarticle.no-shadow.l-container-row",
	Title:       "h1",
	DetailPrice: "h2",
	GalleryImg:  "li.imagegallery--item img",
}

// DefaultExclusions skip pro and top-ad listings
var DefaultExclusions = []ExclusionRule{
	{CSS: "div.badge-hint-pro-small-srp"},
	{CSS: "li.ad-listitem.lazyload-item.badge-topad.is-topad"},
}
