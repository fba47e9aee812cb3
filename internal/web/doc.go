// Package web assembles the HTTP handler served by inkwelld.
//
// Build registers MIME types, installs gzip when server.compress allows it,
// loads the active theme's templates (falling back to the embedded default
// theme), and mounts the blog, sitemap, admin, and log API routes on a gin
// engine. Template parse errors fail the build.
package web
