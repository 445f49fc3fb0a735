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
	"github.com/opencivicdata/ocdid-ca/internal/ocdid"
)

// Latin-1 encoded, as published.
const cdCompFile = "\"Geographic code\",\"Geographic name, english\",\"Geographic name, french\",\"Geographic type, english\",\"Geographic type, french\",\"Population, 2016\"\n" +
	"1201,Shelburne,Shelburne,County,Comt\xe9,14496\n" +
	"2466,Montr\xe9al,Montr\xe9al,Territoire \xe9quivalent,Territoire \xe9quivalent,1942044\n" +
	"3520,Toronto,Toronto,Census division,Division de recensement,2731571\n" +
	"3518,Durham,Durham,Regional municipality,Municipalit\xe9 r\xe9gionale,645862\n" +
	"5915,Greater  Vancouver,Grand  Vancouver,Regional district,District r\xe9gional,2463431\n" +
	"\n" +
	"\"Note:\"\n" +
	"\"Source: Statistics Canada\"\n"

const wantCensusDivisions = "id,name,name_fr,classification\n" +
	"ocd-division/country:ca/cd:1201,Shelburne,Shelburne,CTY\n" +
	"ocd-division/country:ca/cd:2466,Montréal,Montréal,TÉ\n" +
	"ocd-division/country:ca/cd:3520,Toronto,Toronto,CDR\n" +
	"ocd-division/country:ca/cd:3518,Durham,Durham,RM\n" +
	"ocd-division/country:ca/cd:5915,Greater Vancouver,Grand Vancouver,RD\n"

func TestCensusDivisions_Run(t *testing.T) {
	const url = "http://statcan.test/cd.csv"
	var buf bytes.Buffer
	env := Env{
		Fetcher: &fakeFetcher{bodies: map[string][]byte{url: []byte(cdCompFile)}},
		Writer:  ocdid.NewWriter(&buf),
	}

	require.NoError(t, (&CensusDivisions{URL: url}).Run(context.Background(), env))
	assert.Equal(t, wantCensusDivisions, buf.String())
}

func TestCensusDivisions_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=iso-8859-1")
		_, _ = w.Write([]byte(cdCompFile))
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	env := Env{
		Fetcher: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second, MaxRetries: 1}),
		Writer:  ocdid.NewWriter(&buf),
	}

	require.NoError(t, (&CensusDivisions{URL: srv.URL}).Run(context.Background(), env))
	assert.Equal(t, wantCensusDivisions, buf.String())
}

func TestCensusDivisions_Errors(t *testing.T) {
	const url = "http://statcan.test/cd.csv"
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"unknown type",
			"\"Geographic code\",\"Geographic name, english\",\"Geographic name, french\",\"Geographic type, english\"\n" +
				"3520,Toronto,Toronto,Metropolis\n",
			`3520: unknown type "Metropolis"`,
		},
		{
			"missing column",
			"\"Geographic code\",\"Geographic name, english\",\"Geographic name, french\"\n" +
				"3520,Toronto,Toronto\n",
			`no "geographic type, english" column`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			env := Env{
				Fetcher: &fakeFetcher{bodies: map[string][]byte{url: []byte(tt.body)}},
				Writer:  ocdid.NewWriter(&buf),
			}
			err := (&CensusDivisions{URL: url}).Run(context.Background(), env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "census-divisions")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
