// Package metric exports link store metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	pc, _ := metric.NewPrometheusCollector(reg, "")
//	links, _ := doublets.New[uint64](doublets.WithMetricsCollector(pc))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metric
