// Package metrics provides build observability for makesite.
//
// Components receive a Recorder and default to NoopRecorder, so metrics cost
// nothing unless the site file enables them:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
