// Package webadmin provides the browser-based administration dashboard.
//
// The dashboard is read-mostly: admins can inspect registered users,
// advisory requests, and property listings, and promote users to the
// advisor role. All mutation of request state happens through the JSON
// API.
//
// Authentication reuses the token issuer: a successful password login
// sets a short-lived admin token in an HttpOnly cookie, and every
// /admin route verifies it and requires the admin role. Non-admin
// credentials are rejected at login rather than after.
//
// Request descriptions are authored as markdown and rendered to HTML
// with goldmark before display.
package webadmin
