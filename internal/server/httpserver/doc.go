// Package httpserver provides the HTTP server for foteam-server.
//
// Routes:
//
//   - Cart: GET /cart, POST /cart/items, DELETE /cart/items/{photo_id}, DELETE /cart
//   - Identity: POST /login (rotates the session id), POST /logout
//   - Probes: GET /healthz, GET /readyz
//   - Metrics: GET /metrics (Prometheus, optional bearer token)
//
// Every application route runs behind the Sessions middleware, which maps
// the session cookie to a service.Session and saves it after the handler.
package httpserver
