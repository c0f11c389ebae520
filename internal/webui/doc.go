// Package webui serves the dashboard over HTTP.
//
// Every page route passes through a single authorization gate before any
// handler runs: paths under /dashboard require a session, and logged-in
// visitors to public pages are sent to the dashboard. The invoice list page
// serves its table fragment from a view cache that form actions invalidate.
//
// A small bearer-token JSON API sits beside the page routes for programmatic
// invoice access; it is enabled only when a token service is configured.
package webui
