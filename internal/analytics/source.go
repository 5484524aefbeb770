package analytics

import (
	"net/url"
	"path"
	"slices"
	"strings"
)

// Traffic sources assigned to events.
const (
	SourcePaidSearch    = "paid_search"
	SourceEmail         = "email"
	SourceOrganicSearch = "organic_search"
	SourceSocial        = "social"
	SourceInternal      = "internal"
	SourceDirect        = "direct"
	SourceReferral      = "referral"
)

var (
	searchEngines = []string{"google", "bing", "yahoo", "duckduckgo", "baidu", "yandex", "ecosia"} //nolint: gochecknoglobals
	socialSites   = []string{                                                                       //nolint: gochecknoglobals
		"facebook.com", "fb.com", "instagram.com", "twitter.com", "t.co", "x.com", "linkedin.com", "lnkd.in",
		"youtube.com", "youtu.be", "reddit.com", "pinterest.com", "whatsapp.com", "wa.me", "quora.com",
	}
)

func hostOf(referrer string) string {
	u, err := url.Parse(strings.TrimSpace(referrer))
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func sameOrSubdomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// ClassifySource returns the acquisition channel of an event from its UTM
// parameters and referrer. siteHost is the host of the marketing site.
func ClassifySource(utmSource, utmMedium, referrer, siteHost string) string {
	switch strings.ToLower(strings.TrimSpace(utmMedium)) {
	case "cpc", "ppc", "paid", "paid_search", "paidsearch":
		return SourcePaidSearch
	case "email", "e-mail", "newsletter":
		return SourceEmail
	}
	if s := strings.ToLower(strings.TrimSpace(utmSource)); s != "" {
		return s
	}
	if strings.TrimSpace(referrer) == "" {
		return SourceDirect
	}

	host := hostOf(referrer)
	if host == "" {
		return SourceReferral
	}
	if site := strings.TrimPrefix(strings.ToLower(siteHost), "www."); site != "" && sameOrSubdomain(host, site) {
		return SourceInternal
	}
	// the registrable label comes before the public suffix, as in google.co.in
	labels := strings.Split(host, ".")
	for _, l := range labels[:len(labels)-1] {
		if slices.Contains(searchEngines, l) {
			return SourceOrganicSearch
		}
	}
	for _, s := range socialSites {
		if sameOrSubdomain(host, s) {
			return SourceSocial
		}
	}

	return SourceReferral
}

// NormalizePath reduces a page location to the form used for aggregation. A
// full URL is reduced to its path and query. The path is cleaned and loses a
// trailing slash, the fragment and utm_* parameters are dropped and the
// remaining query parameters are sorted. Unparseable input is only trimmed.
func NormalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	p := path.Clean("/" + u.Path)
	if u.RawQuery == "" {
		return p
	}

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		} else {
			slices.Sort(q[k])
		}
	}
	if len(q) == 0 {
		return p
	}

	// Encode sorts by key.
	return p + "?" + q.Encode()
}
