package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultURLOverrides(t *testing.T) {
	m := DefaultURLOverrides()
	assert.Len(t, m, 32)
	assert.Equal(t, "http://www.ramea.ca", m["1003026"])
	assert.Equal(t, "http://lacdubonnet.com/main.asp?fxoid=FXMenu,1&cat_ID=1&sub_ID=16", m["4601057"])
	assert.Equal(t, "http://www.city.iqaluit.nu.ca", m["6204003"])

	// Callers get a copy.
	m["1003026"] = "http://changed.test"
	assert.Equal(t, "http://www.ramea.ca", DefaultURLOverrides()["1003026"])
}

func TestMergeURLOverrides(t *testing.T) {
	m := MergeURLOverrides(map[string]string{
		"1003026": "http://ramea.test",
		"1201004": "http://www.barringtonmunicipality.com",
	})
	assert.Equal(t, "http://ramea.test", m["1003026"])
	assert.Equal(t, "http://www.barringtonmunicipality.com", m["1201004"])
	assert.Equal(t, "http://www.burnaby.ca", m["5915025"])
}

func TestDefaultRegistry_URLOverrides(t *testing.T) {
	reg := DefaultRegistry(URLs{}, map[string]string{"5915025": "http://burnaby.test"})
	s, err := reg.Get("census-subdivision-urls")
	require.NoError(t, err)

	overrides := s.(*CensusSubdivisionURLs).Overrides
	assert.Equal(t, "http://burnaby.test", overrides["5915025"])
	assert.Equal(t, "http://www.emo.ca", overrides["3559019"])
}

func TestParseURLOverrides_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"malformed", "- a\n- b\n", "parse url overrides"},
		{"bad code", "\"35\": http://ontario.test\n", "not a census subdivision code"},
		{"empty url", "\"3520005\": \"\"\n", "is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURLOverrides([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
