package testtool

import (
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux

	"farmlink_service/pkg/config"
	"farmlink_service/pkg/logger"

	"go.uber.org/zap"
)

// StartPprof serves the profiling endpoints on addr outside production
func StartPprof(addr string) {
	if config.IsProduction() {
		logger.Log.Info("production environment, pprof disabled")
		return
	}

	go func() {
		logger.Log.Info("starting pprof server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Log.Errorf("pprof server failed", err)
		}
	}()
}
