package middleware

import (
	"net/http"
	"strings"
)

const methodOverrideField = "_method"

// MethodOverride rewrites POST requests carrying a _method form field or
// query parameter to PUT, PATCH or DELETE. Other methods pass unchanged.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := r.URL.Query().Get(methodOverrideField)
			if override == "" && isForm(r) {
				override = r.PostFormValue(methodOverrideField)
			}
			switch m := strings.ToUpper(override); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
