package scraper

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opencivicdata/ocdid-ca/internal/division"
)

// municipalAssociations are FCM members that are not municipalities.
var municipalAssociations = map[string]bool{
	"Alberta Association of Municipal Districts and Counties":        true,
	"Alberta Urban Municipalities Association":                       true,
	"Union of British Columbia Municipalities":                       true,
	"Association des municipalités bilingues du Manitoba":            true,
	"Association of Manitoba Municipalities":                         true,
	"Association francophone des municipalités du Nouveau-Brunswick": true,
	"Cities of New Brunswick Association":                            true,
	"Union of Municipalities of New Brunswick":                       true,
	"Union of Nova Scotia Municipalities":                            true,
	"Municipalities Newfoundland and Labrador":                       true,
	"Northwest Territories Association of Communities":               true,
	"Nunavut Association of Municipalities":                          true,
	"Association of Municipalities of Ontario":                       true,
	"Federation of Prince Edward Island Municipalities":              true,
	"Fédération Québécoise des Municipalités":                        true,
	"Union des Municipalités du Québec":                              true,
	"Saskatchewan Association of Rural Municipalities":               true,
	"Saskatchewan Urban Municipalities Association":                  true,
	"Association of Yukon Communities":                               true,
}

// doubledSchemeRe matches hrefs like "http://http://www.example.ca".
var doubledSchemeRe = regexp.MustCompile(`\A(http://)(?:http:/)?/`)

// CensusSubdivisionURLs matches Federation of Canadian Municipalities members
// to census subdivisions and prints their web sites.
type CensusSubdivisionURLs struct {
	IndexURL string
	// Overrides replaces the member URL by census subdivision code.
	Overrides map[string]string
}

// Name implements Scraper.
func (s *CensusSubdivisionURLs) Name() string { return "census-subdivision-urls" }

// Description implements Scraper.
func (s *CensusSubdivisionURLs) Description() string {
	return "Prints a CSV of census subdivision identifiers and web sites"
}

// OutputPath implements Scraper.
func (s *CensusSubdivisionURLs) OutputPath() string {
	return "identifiers/country-ca/census_subdivision-url.csv"
}

// Run implements Scraper.
func (s *CensusSubdivisionURLs) Run(ctx context.Context, env Env) error {
	set, err := env.set(s.Name(), division.CensusSubdivision)
	if err != nil {
		return err
	}
	log := zap.L().With(zap.String("scraper", s.Name()))

	index, err := s.document(ctx, env, s.IndexURL)
	if err != nil {
		return err
	}
	base, err := url.Parse(s.IndexURL)
	if err != nil {
		return eris.Wrapf(err, "%s: parse index url", s.Name())
	}

	type page struct {
		j    division.Jurisdiction
		href string
	}
	var pages []page
	var pageErr error
	index.Find("tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		province := strings.TrimSpace(tr.Find("td").Eq(2).Text())
		j, err := ResolveJurisdiction(province, env.SGC)
		if err != nil {
			pageErr = err
			return false
		}
		href, ok := tr.Find("a").First().Attr("href")
		if !ok {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			pageErr = eris.Wrapf(err, "%s: member page link %q", s.Name(), href)
			return false
		}
		pages = append(pages, page{j: j, href: base.ResolveReference(ref).String()})
		return true
	})
	if pageErr != nil {
		return pageErr
	}

	if err := env.Writer.WriteHeader("id", "url"); err != nil {
		return err
	}

	for _, p := range pages {
		doc, err := s.document(ctx, env, p.href)
		if err != nil {
			return err
		}

		var rowErr error
		doc.Find("ul.membership li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			href, ok := li.Find("a").First().Attr("href")
			if !ok || strings.Contains(href, "@") {
				return true
			}
			value := strings.TrimSpace(li.Text())
			if municipalAssociations[value] {
				return true
			}

			res, err := set.Match(p.j, value)
			if err != nil {
				rowErr = err
				return false
			}
			if env.Report != nil {
				env.Report.Record(p.j, value, res)
			}
			if !res.Matched {
				return true
			}

			code := res.Entry.ID.Code()
			site, ok := s.Overrides[code]
			if !ok {
				site = cleanURL(href, p.href)
			}
			if err := env.Writer.Write("csd:", code, site); err != nil {
				rowErr = err
				return false
			}
			return true
		})
		if rowErr != nil {
			return eris.Wrapf(rowErr, "%s: %s", s.Name(), p.href)
		}
		log.Debug("member page done", zap.String("jurisdiction", string(p.j)))
	}

	return env.Writer.Flush()
}

func (s *CensusSubdivisionURLs) document(ctx context.Context, env Env, rawURL string) (*goquery.Document, error) {
	body, err := env.Fetcher.Download(ctx, rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: fetch %s", s.Name(), rawURL)
	}
	defer body.Close() //nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: parse %s", s.Name(), rawURL)
	}
	return doc, nil
}

// cleanURL repairs a member href: a doubled scheme is collapsed, a relative
// href takes the scheme and host of page, and a bare "/" path is dropped.
func cleanURL(href, page string) string {
	href = doubledSchemeRe.ReplaceAllString(strings.TrimSpace(href), "${1}")
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.Host == "" {
		if p, err := url.Parse(page); err == nil {
			u.Scheme = p.Scheme
			u.Host = p.Host
			if !strings.HasPrefix(u.Path, "/") {
				u.Path = "/" + u.Path
			}
		}
	}
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}
