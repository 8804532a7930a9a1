package controller

import (
	"net/http"
	"net/http/pprof"
	"strings"
)

// PprofMux returns a ServeMux with the net/http/pprof handlers registered
// under prefix, e.g. "/debug/pprof/". Named profiles (heap, goroutine, ...)
// are served by the index handler, which expects the "/debug/pprof/" prefix.
func PprofMux(prefix string) *http.ServeMux {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(prefix, pprof.Index)
	mux.HandleFunc(prefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(prefix+"profile", pprof.Profile)
	mux.HandleFunc(prefix+"symbol", pprof.Symbol)
	mux.HandleFunc(prefix+"trace", pprof.Trace)

	return mux
}
