package main

import "embed"

// embeddedWeb contains the compiled-in landing page and static assets.
//
//go:embed web/*
var embeddedWeb embed.FS
