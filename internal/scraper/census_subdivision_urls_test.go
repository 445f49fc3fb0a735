package scraper

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencivicdata/ocdid-ca/internal/fetcher"
)

const fcmIndex = `<html><body><table>
<thead><tr><th>Name</th><th>Population</th><th>Province</th></tr></thead>
<tbody>
<tr><td><a href="/members/on.htm">Ontario members</a></td><td>13448494</td><td>Ontario</td></tr>
<tr><td><a href="members/ns.htm">Nova Scotia members</a></td><td>923598</td><td>Nova Scotia</td></tr>
</tbody></table></body></html>`

const fcmOntario = `<html><body><ul class="membership">
<li><a href="http://www.toronto.ca/">City of Toronto</a></li>
<li><a href="mailto:info@amo.on.ca">AMO secretariat</a></li>
<li><a href="http://www.amo.on.ca">Association of Municipalities of Ontario</a></li>
<li><a href="http://www.york.ca">York County</a></li>
<li><a href="http://springfield.example">Town of Springfield</a></li>
<li>Township of Nowhere</li>
</ul></body></html>`

const fcmNovaScotia = `<html><body><ul class="membership">
<li><a href="http://http://www.town.shelburne.ns.ca/">Town of Shelburne</a></li>
<li><a href="/barrington">Municipality of the District of Barrington</a></li>
</ul></body></html>`

func newFCMServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range map[string]string{
		"/our-members.htm": fcmIndex,
		"/members/on.htm":  fcmOntario,
		"/members/ns.htm":  fcmNovaScotia,
	} {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCensusSubdivisionURLs_Run(t *testing.T) {
	srv := newFCMServer(t)

	var buf bytes.Buffer
	env := testEnv(t, &buf)
	env.Fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:           5 * time.Second,
		MaxRetries:        1,
		RequestsPerSecond: 100,
	})

	s := &CensusSubdivisionURLs{
		IndexURL:  srv.URL + "/our-members.htm",
		Overrides: map[string]string{"1201004": "http://www.barringtonmunicipality.com"},
	}
	require.NoError(t, s.Run(context.Background(), env))

	assert.Equal(t, "id,url\n"+
		"ocd-division/country:ca/csd:3520005,http://www.toronto.ca\n"+
		"ocd-division/country:ca/csd:1201008,http://www.town.shelburne.ns.ca\n"+
		"ocd-division/country:ca/csd:1201004,http://www.barringtonmunicipality.com\n",
		buf.String())

	assert.Equal(t, 3, env.Report.Matched())
	assert.Equal(t, 1, env.Report.Skipped())
	unmatched := env.Report.Unmatched()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "Town of Springfield", unmatched[0].Name)
}

func TestCensusSubdivisionURLs_UnknownProvince(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/index", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<table><tbody><tr><td><a href="/x">x</a></td><td>1</td><td>Atlantis</td></tr></tbody></table>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var buf bytes.Buffer
	env := testEnv(t, &buf)
	env.Fetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{MaxRetries: 1, RequestsPerSecond: 100})

	err := (&CensusSubdivisionURLs{IndexURL: srv.URL + "/index"}).Run(context.Background(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestCleanURL(t *testing.T) {
	tests := []struct {
		href, page, want string
	}{
		{"http://www.toronto.ca/", "", "http://www.toronto.ca"},
		{"http://www.toronto.ca/en/", "", "http://www.toronto.ca/en/"},
		{"http://http://www.ramea.ca", "", "http://www.ramea.ca"},
		{"http:///www.emo.ca", "", "http://www.emo.ca"},
		{"/barrington", "http://fcm.test/members/ns.htm", "http://fcm.test/barrington"},
		{"barrington", "http://fcm.test/members/ns.htm", "http://fcm.test/barrington"},
		{" http://www.sutton.ca/ ", "", "http://www.sutton.ca"},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanURL(tt.href, tt.page))
		})
	}
}
