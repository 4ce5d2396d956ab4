// Package exporter exposes monitor snapshots as Prometheus metrics.
//
// Collector refreshes its source on scrape, at most once per MinInterval;
// scrapes arriving sooner are served the outcome of the previous refresh.
// Entry series are only emitted while the last refresh succeeded, so a
// stopped or dead source shows up as mahm_up 0 rather than frozen values.
package exporter

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/joshuapare/mahmkit/pkg/types"
)

const namespace = "mahm"

// Source is what the collector scrapes. *monitor.Monitor implements it.
type Source interface {
	Refresh() error
	Snapshot() types.Snapshot
}

// Options configures a Collector.
type Options struct {
	// MinInterval is the minimum time between refreshes. Zero refreshes on
	// every scrape.
	MinInterval time.Duration
	// Logger receives refresh failures. Nil discards.
	Logger *slog.Logger
}

var (
	entryLabels = []string{"index", "name", "units", "gpu", "src_id"}

	upDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "up"),
		"Whether the last refresh of the shared memory segment succeeded.",
		nil, nil,
	)
	headerInfoDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "header", "info"),
		"Shared memory header metadata.",
		[]string{"signature", "version"}, nil,
	)
	timestampDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "snapshot", "timestamp_seconds"),
		"Capture time written by the source, in seconds since the Unix epoch.",
		nil, nil,
	)
	entriesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "entries"),
		"Number of entries in the last snapshot.",
		nil, nil,
	)
	entryValueDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "entry", "value"),
		"Current value of a monitoring entry.",
		entryLabels, nil,
	)
	entryMinDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "entry", "min_limit"),
		"Lower graph limit of a monitoring entry.",
		entryLabels, nil,
	)
	entryMaxDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "entry", "max_limit"),
		"Upper graph limit of a monitoring entry.",
		entryLabels, nil,
	)
	gpuInfoDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "gpu", "info"),
		"GPU identification published by the source.",
		[]string{"index", "id", "family", "device", "driver", "bios"}, nil,
	)
	gpuMemoryDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "gpu", "memory_bytes"),
		"On-board memory of a GPU.",
		[]string{"index"}, nil,
	)
)

// Collector is a prometheus.Collector over a Source.
type Collector struct {
	mu        sync.Mutex
	src       Source
	sometimes *rate.Sometimes
	log       *slog.Logger

	lastErr error
	last    types.Snapshot

	refreshes     prometheus.Counter
	refreshErrors *prometheus.CounterVec
}

// New returns a Collector over src.
func New(src Source, opts Options) *Collector {
	s := &rate.Sometimes{Interval: opts.MinInterval}
	if opts.MinInterval <= 0 {
		s = &rate.Sometimes{Every: 1}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Collector{
		src:       src,
		sometimes: s,
		log:       log,
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Total number of shared memory refreshes.",
		}),
		refreshErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Total number of failed shared memory refreshes by kind.",
		}, []string{"kind"}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- upDesc
	ch <- headerInfoDesc
	ch <- timestampDesc
	ch <- entriesDesc
	ch <- entryValueDesc
	ch <- entryMinDesc
	ch <- entryMaxDesc
	ch <- gpuInfoDesc
	ch <- gpuMemoryDesc
	c.refreshes.Describe(ch)
	c.refreshErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sometimes.Do(c.refresh)

	c.refreshes.Collect(ch)
	c.refreshErrors.Collect(ch)

	if c.lastErr != nil || c.last.Header == nil {
		ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(upDesc, prometheus.GaugeValue, 1)

	h := c.last.Header
	ch <- prometheus.MustNewConstMetric(headerInfoDesc, prometheus.GaugeValue, 1,
		h.Signature.String(), h.Version.String())
	ch <- prometheus.MustNewConstMetric(timestampDesc, prometheus.GaugeValue, float64(h.Time.Unix()))
	ch <- prometheus.MustNewConstMetric(entriesDesc, prometheus.GaugeValue, float64(len(c.last.Entries)))

	for i, e := range c.last.Entries {
		labels := []string{
			strconv.Itoa(i),
			e.SrcName,
			e.SrcUnits,
			strconv.FormatUint(uint64(e.GPU), 10),
			strconv.FormatUint(uint64(e.SrcID), 10),
		}
		ch <- prometheus.MustNewConstMetric(entryValueDesc, prometheus.GaugeValue, float64(e.Data), labels...)
		ch <- prometheus.MustNewConstMetric(entryMinDesc, prometheus.GaugeValue, float64(e.MinLimit), labels...)
		ch <- prometheus.MustNewConstMetric(entryMaxDesc, prometheus.GaugeValue, float64(e.MaxLimit), labels...)
	}
	for i, g := range c.last.GPUs {
		idx := strconv.Itoa(i)
		ch <- prometheus.MustNewConstMetric(gpuInfoDesc, prometheus.GaugeValue, 1,
			idx, g.ID, g.Family, g.Device, g.Driver, g.BIOS)
		ch <- prometheus.MustNewConstMetric(gpuMemoryDesc, prometheus.GaugeValue, float64(g.MemAmount)*1024, idx)
	}
}

func (c *Collector) refresh() {
	c.refreshes.Inc()
	err := c.src.Refresh()
	c.lastErr = err
	c.last = c.src.Snapshot()
	if err != nil {
		kind := types.KindOf(err)
		c.refreshErrors.WithLabelValues(kind.String()).Inc()
		c.log.Warn("refresh failed", "kind", kind.String(), "error", err)
	}
}
