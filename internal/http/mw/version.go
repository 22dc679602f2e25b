package mw

import "net/http"

// VersionHeader is the response header carrying the API build.
const VersionHeader = "X-API-Version"

// APIVersion stamps every response with the running build so the browser
// client can prompt for a reload after a deploy. An empty version leaves
// responses untouched.
func APIVersion(build string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if build == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(VersionHeader, build)
			next.ServeHTTP(w, r)
		})
	}
}
