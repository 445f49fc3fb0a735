package scraper

import "github.com/rotisserie/eris"

// Registry maps scraper names to their implementations.
type Registry struct {
	scrapers map[string]Scraper
	order    []string // insertion order for deterministic listing
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[string]Scraper)}
}

// Register adds a scraper. A later scraper with the same name replaces the earlier one.
func (r *Registry) Register(s Scraper) {
	name := s.Name()
	if _, ok := r.scrapers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.scrapers[name] = s
}

// Get returns a scraper by name.
func (r *Registry) Get(name string) (Scraper, error) {
	s, ok := r.scrapers[name]
	if !ok {
		return nil, eris.Errorf("scraper: unknown scraper %q", name)
	}
	return s, nil
}

// All returns the scrapers in registration order.
func (r *Registry) All() []Scraper {
	out := make([]Scraper, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.scrapers[name])
	}
	return out
}

// Names returns the scraper names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// URLs locates the upstream sources. Empty values use the defaults.
type URLs struct {
	CensusDivisions    string
	CensusSubdivisions string
	FCMMembers         string
}

// Default source locations.
const (
	DefaultCensusDivisionsURL    = "http://www12.statcan.gc.ca/census-recensement/2016/dp-pd/hlt-fst/pd-pl/Tables/CompFile.cfm?Lang=Eng&T=701&OFT=FULLCSV"
	DefaultCensusSubdivisionsURL = "http://www12.statcan.gc.ca/census-recensement/2016/dp-pd/hlt-fst/pd-pl/Tables/CompFile.cfm?Lang=Eng&T=301&OFT=FULLCSV"
	DefaultFCMMembersURL         = "http://www.fcm.ca/home/about-us/membership/our-members.htm"
)

// DefaultRegistry registers the built-in scrapers. overrides replaces FCM
// member URLs by census subdivision code, on top of DefaultURLOverrides.
func DefaultRegistry(urls URLs, overrides map[string]string) *Registry {
	if urls.CensusDivisions == "" {
		urls.CensusDivisions = DefaultCensusDivisionsURL
	}
	if urls.CensusSubdivisions == "" {
		urls.CensusSubdivisions = DefaultCensusSubdivisionsURL
	}
	if urls.FCMMembers == "" {
		urls.FCMMembers = DefaultFCMMembersURL
	}
	r := NewRegistry()
	r.Register(&CensusDivisions{URL: urls.CensusDivisions})
	r.Register(&CensusSubdivisions{URL: urls.CensusSubdivisions})
	r.Register(&CensusSubdivisionURLs{IndexURL: urls.FCMMembers, Overrides: MergeURLOverrides(overrides)})
	return r
}
