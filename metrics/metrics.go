// Package metrics exposes Prometheus collectors for the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MetadataResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharehub_metadata_resolutions_total",
			Help: "Post page metadata resolutions by the fallback step that chose the domain and the thumbnail",
		},
		[]string{"domain_step", "thumbnail_step"},
	)

	CrawlerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharehub_crawler_requests_total",
			Help: "Post page requests from link-preview crawlers",
		},
		[]string{"crawler"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharehub_uploads_total",
			Help: "Media uploads by backend and outcome",
		},
		[]string{"backend", "success"},
	)

	LinkCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sharehub_link_cache_total",
			Help: "Link cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sharehub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

// Recorder is what the server reports to.
type Recorder interface {
	IncrementResolution(domainStep, thumbnailStep string)
	IncrementCrawler(name string)
	IncrementUpload(backend string, success bool)
	IncrementLinkCache(hit bool)
	RecordRequest(route string, status int, d time.Duration)
}

// Prometheus records into the package collectors.
type Prometheus struct{}

// NewPrometheus returns a Recorder backed by the default registry.
func NewPrometheus() Recorder {
	return Prometheus{}
}

func (Prometheus) IncrementResolution(domainStep, thumbnailStep string) {
	if thumbnailStep == "" {
		thumbnailStep = "placeholder"
	}
	MetadataResolutionsTotal.WithLabelValues(domainStep, thumbnailStep).Inc()
}

func (Prometheus) IncrementCrawler(name string) {
	CrawlerRequestsTotal.WithLabelValues(name).Inc()
}

func (Prometheus) IncrementUpload(backend string, success bool) {
	UploadsTotal.WithLabelValues(backend, strconv.FormatBool(success)).Inc()
}

func (Prometheus) IncrementLinkCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	LinkCacheTotal.WithLabelValues(result).Inc()
}

func (Prometheus) RecordRequest(route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Nop discards everything.
type Nop struct{}

func (Nop) IncrementResolution(string, string) {}
func (Nop) IncrementCrawler(string) {}
func (Nop) IncrementUpload(string, bool) {}
func (Nop) IncrementLinkCache(bool) {}
func (Nop) RecordRequest(string, int, time.Duration) {}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
