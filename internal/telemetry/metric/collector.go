package metric

import "github.com/prometheus/client_golang/prometheus"

// CountFunc reports the number of session records currently on disk.
type CountFunc func() (int, error)

// Collector reports the live size of the session directory at scrape time.
type Collector struct {
	count CountFunc
	files *prometheus.Desc
	errs  *prometheus.Desc
}

// NewCollector creates a collector backed by count.
func NewCollector(count CountFunc) *Collector {
	return &Collector{
		count: count,
		files: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "records"),
			"Session record files currently in the session directory",
			nil, nil,
		),
		errs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "records_scrape_error"),
			"1 if the session directory could not be listed during the last scrape",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.files
	ch <- c.errs
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	n, err := c.count()
	failed := 0.0
	if err != nil {
		failed = 1
	}
	ch <- prometheus.MustNewConstMetric(c.files, prometheus.GaugeValue, float64(n))
	ch <- prometheus.MustNewConstMetric(c.errs, prometheus.GaugeValue, failed)
}
