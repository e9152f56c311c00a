// Package yaml loads site profiles from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/reblog"
	"gopkg.in/yaml.v3"
)

// LoadSite reads a site profile from path. Fields missing from the file
// keep their DefaultSite values.
func LoadSite(path string) (reblog.Site, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return reblog.Site{}, reblog.Errorf(reblog.ECONFIG, "reading site profile: %v", err)
	}
	return ParseSite(raw)
}

// ParseSite decodes a site profile. Unknown keys are rejected so that a
// misspelled field does not silently fall back to the default.
func ParseSite(raw []byte) (reblog.Site, error) {
	site := reblog.DefaultSite()
	explicitListing := false

	var probe struct {
		ListingURL *string `yaml:"listingUrl"`
	}
	if err := yaml.Unmarshal(raw, &probe); err == nil && probe.ListingURL != nil {
		explicitListing = true
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&site); err != nil && !errors.Is(err, io.EOF) {
		return reblog.Site{}, reblog.Errorf(reblog.ECONFIG, "parsing site profile: %v", err)
	}

	// A profile that only changes the host or article path should not keep
	// pointing at the default listing page.
	if !explicitListing {
		site.ListingURL = strings.TrimSuffix(site.BaseURL, "/") + site.ArticlePath
	}

	if err := site.Validate(); err != nil {
		return reblog.Site{}, reblog.Errorf(reblog.ECONFIG, "site profile: %s", reblog.ErrorMessage(err))
	}
	return site, nil
}
