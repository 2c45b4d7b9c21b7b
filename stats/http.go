package stats

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osmwrangle/osmwrangle/log"
)

// StartHttpPProf serves the pprof handlers and the prometheus metrics
// on /metrics.
func StartHttpPProf(bind string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Println("[error]", http.ListenAndServe(bind, nil))
	}()
}
