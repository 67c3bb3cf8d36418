// Package handler provides HTTP request handlers for foteam-server.
//
// Handlers never open sessions themselves: the session middleware in the
// parent package attaches one to the request context, and handlers reach
// it through service.FromContext.
package handler
