// Package httputil holds the JSON plumbing shared by the API handlers:
// a response envelope, status-keyed error writers, and request body
// decoding. Handlers go through these helpers rather than writing to
// http.ResponseWriter directly, so the envelope and error codes stay
// uniform across endpoints.
package httputil
