package extraction

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/williampepple1/classifieds-scraper/internal/config"
)

// Predicate reports whether a listing item must be dropped
type Predicate interface {
	Match(item *goquery.Selection) bool
}

// cssPredicate matches when the selector hits the item, one of its ancestors or a descendant
type cssPredicate struct {
	selector string
}

func (p cssPredicate) Match(item *goquery.Selection) bool {
	return item.Find(p.selector).Length() > 0 || item.Closest(p.selector).Length() > 0
}

// xpathPredicate is evaluated with the item as document root
type xpathPredicate struct {
	expr *xpath.Expr
}

func (p xpathPredicate) Match(item *goquery.Selection) bool {
	for _, n := range item.Nodes {
		if htmlquery.QuerySelector(n, p.expr) != nil {
			return true
		}
	}
	return false
}

// CompileExclusions turns the configured rules into predicates
func CompileExclusions(rules []config.ExclusionRule) ([]Predicate, error) {
	predicates := make([]Predicate, 0, len(rules))
	for i, rule := range rules {
		switch {
		case rule.CSS != "":
			predicates = append(predicates, cssPredicate{selector: rule.CSS})
		case rule.XPath != "":
			expr, err := xpath.Compile(rule.XPath)
			if err != nil {
				return nil, fmt.Errorf("exclusion %d: invalid xpath %q: %w", i, rule.XPath, err)
			}
			predicates = append(predicates, xpathPredicate{expr: expr})
		default:
			return nil, fmt.Errorf("exclusion %d: no css or xpath set", i)
		}
	}
	return predicates, nil
}
