// Package lang resolves localized UI messages from nested per-locale
// catalogs. Keys are dot-separated ("slackin.invite.sent"), messages may
// carry pipe-separated plural forms with optional explicit selectors
// ("{0} none|{1} one|[2,Inf] many"), and ":name" placeholders are
// substituted from caller-supplied replacements.
package lang

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Catalog maps a source key ("<locale>.<namespace>") to a nested message
// tree. Internal nodes are map[string]any, leaves are strings.
type Catalog map[string]map[string]any

// Replacements maps placeholder names (without the leading colon) to the
// values substituted for their ":<name>" tokens.
type Replacements map[string]string

// Resolver holds a message catalog and the active locale. All methods are
// safe for concurrent use; SetMessages and SetLocale take the write lock so
// a catalog or locale swap never races an in-flight lookup.
type Resolver struct {
	mu            sync.RWMutex
	defaultLocale string
	locale        string
	catalog       Catalog
}

// New returns a resolver with no catalog and the given default locale.
func New(defaultLocale string) *Resolver {
	return &Resolver{defaultLocale: defaultLocale}
}

// SetMessages replaces the catalog wholesale. The resolver takes ownership
// of the map; callers must not mutate it afterwards. Entries are not
// validated up front: malformed branches simply fail lookups later.
func (r *Resolver) SetMessages(catalog Catalog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = catalog
}

// SetLocale overrides the active locale. The locale is not checked against
// the catalog; lookups for an unknown locale fall back to returning keys.
func (r *Resolver) SetLocale(locale string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locale = locale
}

// Locale returns the override set via SetLocale, else the default locale.
func (r *Resolver) Locale() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeLocale()
}

// WithLocale returns a resolver that shares the current catalog but uses a
// fixed locale, for per-request rendering. The clone sees the catalog as it
// was at the time of the call; a later SetMessages on the parent does not
// affect it.
func (r *Resolver) WithLocale(locale string) *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Resolver{
		defaultLocale: r.defaultLocale,
		locale:        locale,
		catalog:       r.catalog,
	}
}

// Has reports whether key resolves to a message in the active locale.
func (r *Resolver) Has(key string) bool {
	_, ok := r.resolve(key)
	return ok
}

// Get returns the message stored under key with replacements applied.
// A key that does not resolve is returned unchanged, which leaves a visible
// untranslated marker in the UI instead of an empty string or an error.
func (r *Resolver) Get(key string, replacements Replacements) string {
	message, ok := r.resolve(key)
	if !ok {
		return key
	}
	return applyReplacements(message, replacements)
}

// Choice returns the plural form of the message under key that matches
// count. The count is exposed to the message as the ":count" placeholder.
// Placeholder substitution runs on the selected form only, after selection,
// so tokens in unselected forms are never touched.
func (r *Resolver) Choice(key string, count int, replacements Replacements) string {
	merged := make(Replacements, len(replacements)+1)
	for name, value := range replacements {
		merged[name] = value
	}
	merged["count"] = strconv.Itoa(count)

	message, ok := r.resolve(key)
	if !ok {
		return key
	}
	return applyReplacements(selectForm(message, count), merged)
}

// Locales returns the locales present in the catalog, sorted.
func (r *Resolver) Locales() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for source := range r.catalog {
		if idx := strings.Index(source, "."); idx > 0 {
			seen[source[:idx]] = struct{}{}
		}
	}
	locales := make([]string, 0, len(seen))
	for locale := range seen {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// Messages returns the namespace trees loaded for locale. The result maps
// namespace to its message tree and is nil when the locale is unknown.
func (r *Resolver) Messages(locale string) map[string]map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefix := locale + "."
	var namespaces map[string]map[string]any
	for source, tree := range r.catalog {
		if !strings.HasPrefix(source, prefix) {
			continue
		}
		if namespaces == nil {
			namespaces = make(map[string]map[string]any)
		}
		namespaces[strings.TrimPrefix(source, prefix)] = tree
	}
	return namespaces
}

// resolve walks the catalog for key under the active locale. The first key
// segment combines with the locale into the source key; the remaining
// segments descend the message tree. Resolution succeeds only when the walk
// ends on a string leaf.
func (r *Resolver) resolve(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.catalog == nil || key == "" {
		return "", false
	}

	segments := strings.Split(key, ".")
	source := r.activeLocale() + "." + segments[0]
	node, ok := r.catalog[source]
	if !ok {
		return "", false
	}

	var current any = node
	for _, segment := range segments[1:] {
		branch, isNode := current.(map[string]any)
		if !isNode {
			return "", false
		}
		next, present := branch[segment]
		if !present {
			return "", false
		}
		current = next
	}

	leaf, isLeaf := current.(string)
	if !isLeaf {
		return "", false
	}
	return leaf, true
}

// activeLocale must be called with the lock held.
func (r *Resolver) activeLocale() string {
	if r.locale != "" {
		return r.locale
	}
	return r.defaultLocale
}

// applyReplacements substitutes every ":<name>" occurrence literally. Names
// are matched as plain substrings in unspecified map order, so a name that
// prefixes another (":min" vs ":minimum") can over-match. Callers choose
// placeholder names that are not prefixes of each other.
func applyReplacements(message string, replacements Replacements) string {
	for name, value := range replacements {
		message = strings.ReplaceAll(message, ":"+name, value)
	}
	return message
}
