package handlers

import "net/http"

// ServiceName is reported by the liveness route at /.
const ServiceName = "unpack-api"

// RootResponse is the GET / body.
type RootResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{Status: "ok", Service: ServiceName})
}
