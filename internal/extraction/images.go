package extraction

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const imageObjectType = "ImageObject"

// DiscoverImages returns the deduplicated image URLs of a listing page, JSON-LD
// ImageObjects first, then gallery images. Malformed JSON-LD blocks are logged and skipped.
func (e *Extractor) DiscoverImages(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			e.Log.Warnf("JSON-LD block %d could not be parsed: %v", i, err)
			return
		}
		for _, obj := range jsonObjects(data) {
			if obj["@type"] != imageObjectType {
				continue
			}
			if u, ok := obj["contentUrl"].(string); ok {
				add(u)
			}
		}
	})

	doc.Find(e.Config.Selectors.GalleryImg).Each(func(i int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			add(src)
		}
	})

	return urls
}

// jsonObjects flattens a decoded JSON-LD value into its top-level objects
func jsonObjects(v interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{t}
	case []interface{}:
		var objs []map[string]interface{}
		for _, item := range t {
			if obj, ok := item.(map[string]interface{}); ok {
				objs = append(objs, obj)
			}
		}
		return objs
	default:
		return nil
	}
}
