// Package api exposes the training session and the trainer's managers over
// HTTP. It is a local presentation adapter: it decodes requests, calls the
// services, and renders snapshots and views as JSON. It has no
// authentication and serves a single learner.
package api
