// Package domain contains the entities produced by resolving Google Maps
// short links: coordinates and per-link results. They are free of browser
// and transport concerns so they can be shared by the resolver, the batch
// orchestrator, the exporters and the HTTP layer.
package domain
