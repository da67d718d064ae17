package meta

import (
	"net/http"
	"strings"
)

// RequestContext is the part of an inbound request the resolver looks at.
type RequestContext struct {
	Host           string
	ForwardedHost  string
	ForwardedProto string
	UserAgent      string
}

// RequestContextFrom copies the relevant headers out of r.
func RequestContextFrom(r *http.Request) RequestContext {
	if r == nil {
		return RequestContext{}
	}
	return RequestContext{
		Host:           r.Host,
		ForwardedHost:  r.Header.Get("X-Forwarded-Host"),
		ForwardedProto: r.Header.Get("X-Forwarded-Proto"),
		UserAgent:      r.UserAgent(),
	}
}

type domainStep struct {
	step Step
	pick func(r *Resolver, rc RequestContext) (string, bool)
}

var domainSteps = []domainStep{
	{StepSiteURL, func(r *Resolver, _ RequestContext) (string, bool) {
		return r.cfg.SiteURL, r.cfg.SiteURL != ""
	}},
	{StepDeploymentURL, func(r *Resolver, _ RequestContext) (string, bool) {
		d := r.cfg.DeploymentURL
		if d == "" {
			return "", false
		}
		if !strings.HasPrefix(d, "http://") && !strings.HasPrefix(d, "https://") {
			d = "https://" + d
		}
		return d, true
	}},
	{StepHeaders, func(_ *Resolver, rc RequestContext) (string, bool) {
		return domainFromHeaders(rc)
	}},
	{StepDevelopment, func(r *Resolver, _ RequestContext) (string, bool) {
		return r.cfg.DevDefault, r.cfg.Development
	}},
	{StepProduction, func(r *Resolver, _ RequestContext) (string, bool) {
		return r.cfg.ProdDefault, true
	}},
}

// ResolveCurrentDomain decides the scheme and host used to build absolute
// URLs for this request. It never panics: any failure while inspecting the
// request yields the production default.
func (r *Resolver) ResolveCurrentDomain(rc RequestContext) (res Resolution) {
	fallback := Resolution{Value: DefaultProdDomain, Step: StepProduction}
	if r != nil && r.cfg.ProdDefault != "" {
		fallback.Value = r.cfg.ProdDefault
	}
	defer func() {
		if recover() != nil {
			res = fallback
		}
	}()
	for _, s := range domainSteps {
		if v, ok := s.pick(r, rc); ok {
			return Resolution{Value: strings.TrimRight(v, "/"), Step: s.step}
		}
	}
	return fallback
}

func domainFromHeaders(rc RequestContext) (string, bool) {
	host := firstListValue(rc.Host)
	if host == "" {
		return "", false
	}
	actual := host
	if fh := firstListValue(rc.ForwardedHost); fh != "" {
		actual = fh
	}
	proto := strings.ToLower(firstListValue(rc.ForwardedProto))
	if proto == "" {
		proto = "https"
		if isLoopback(host) {
			proto = "http"
		}
	}
	return proto + "://" + actual, true
}

// firstListValue returns the first element of a comma-separated header value,
// as proxies append to X-Forwarded-* lists.
func firstListValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

func isLoopback(host string) bool {
	return strings.Contains(host, "localhost") ||
		strings.Contains(host, "127.0.0.1") ||
		strings.Contains(host, "[::1]")
}
