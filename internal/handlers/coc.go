package handlers

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"slackin/internal/lang"
	"slackin/internal/logger"
)

// RegisterCoCRoutes serves the code of conduct page, rendered from the
// configured markdown file. The file is read per request so edits show up
// without a restart.
func RegisterCoCRoutes(router chi.Router, resolver *lang.Resolver, cocPath string) {
	markdown := goldmark.New(goldmark.WithExtensions(extension.GFM))

	router.Get("/coc", func(writer http.ResponseWriter, request *http.Request) {
		if cocPath == "" {
			http.NotFound(writer, request)
			return
		}
		source, err := os.ReadFile(cocPath)
		if err != nil {
			logger.HTTPError(request.Method, request.URL.Path, http.StatusNotFound, err).Msg("code of conduct file unreadable")
			http.NotFound(writer, request)
			return
		}

		var body bytes.Buffer
		if err := markdown.Convert(source, &body); err != nil {
			logger.HTTPError(request.Method, request.URL.Path, http.StatusInternalServerError, err).Msg("code of conduct render failed")
			http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		title := resolver.WithLocale(resolveLocale(request, resolver)).Get("slackin.coc", nil)
		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(writer, cocPageTemplate, html.EscapeString(title), body.String())
	})
}

const cocPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 42rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #222; }
a { color: #2f6f9f; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; border-radius: 3px; }
</style>
</head>
<body>
%s
</body>
</html>
`
