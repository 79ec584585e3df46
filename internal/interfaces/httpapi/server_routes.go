package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/filters", handler.ListFilters)
	mux.HandleFunc("GET /v1/filters/{filterID}", handler.GetFilter)
	mux.HandleFunc("GET /v1/filters/{filterID}/leaderboards/{variant}", handler.ListLeaderboard)
	mux.HandleFunc("GET /v1/players/{playerID}/profile", handler.GetPlayerProfile)
}

// Everything that writes goes through the internal token.
func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalToken string) {
	mux.Handle("PUT /v1/filters/{filterID}", RequireInternalToken(internalToken, http.HandlerFunc(handler.UpsertFilter)))
	mux.Handle("POST /v1/records", RequireInternalToken(internalToken, http.HandlerFunc(handler.SubmitRecord)))
	mux.Handle("PUT /v1/records/{recordID}/classification", RequireInternalToken(internalToken, http.HandlerFunc(handler.ReclassifyRecord)))
	mux.Handle("POST /v1/recalculations", RequireInternalToken(internalToken, http.HandlerFunc(handler.RequestRecalculation)))
}
