package redirect

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrStoreUnavailable is returned when the mapping document could not be
// read from its store, either because the store could not be reached or
// because the document it returned could not be used.
var ErrStoreUnavailable = errors.New("redirect store unavailable")

// ErrMalformedMapping is returned when a document is not a valid slug to
// entry mapping.
var ErrMalformedMapping = errors.New("malformed redirect mapping")

// Entry is the redirect target and kind configured for a slug.
type Entry struct {
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Mapping maps slugs (no leading slash, case sensitive) to their entries.
type Mapping map[string]Entry

// Kind is a row of the redirect classification table.
type Kind struct {
	Status      int
	Description string
	// Known is false when the type was not recognised and the default row
	// was used instead.
	Known bool
}

var temporary = Kind{Status: 302, Description: "Found", Known: true}

var kinds = map[string]Kind{
	"permanent":          {301, "Moved Permanently", true},
	"301":                {301, "Moved Permanently", true},
	"temporary":          temporary,
	"302":                temporary,
	"see-other":          {303, "See Other", true},
	"303":                {303, "See Other", true},
	"temporary-redirect": {307, "Temporary Redirect", true},
	"307":                {307, "Temporary Redirect", true},
	"permanent-redirect": {308, "Permanent Redirect", true},
	"308":                {308, "Permanent Redirect", true},
}

// Classify returns the status code and text for a redirect type. Matching is
// case insensitive. Unrecognised or empty types fall back to 302 Found.
func Classify(typ string) Kind {
	if k, ok := kinds[strings.ToLower(typ)]; ok {
		return k
	}
	k := temporary
	k.Known = false
	return k
}

// Decode parses a JSON mapping document. All problems found in the document
// are reported together, and the returned error always matches
// [ErrMalformedMapping].
func Decode(data []byte) (Mapping, error) {
	m, skipped, err := DecodeLenient(data)
	if err != nil {
		return nil, err
	}
	if skipped != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMapping, skipped)
	}
	return m, nil
}

// DecodeLenient parses a JSON mapping document, leaving out entries that are
// invalid instead of rejecting the whole document. The entries left out are
// described by skipped, which is nil when every entry was kept. err is only
// set, and matches [ErrMalformedMapping], when the document itself is not a
// JSON object.
func DecodeLenient(data []byte) (m Mapping, skipped error, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedMapping, err)
	}
	if raw == nil {
		return nil, nil, fmt.Errorf("%w: document is not an object", ErrMalformedMapping)
	}

	m = make(Mapping, len(raw))
	for slug, msg := range raw {
		var e Entry
		if err := json.Unmarshal(msg, &e); err != nil {
			skipped = multierror.Append(skipped, fmt.Errorf("slug %q: %w", slug, err))
			continue
		}
		if err := validate(slug, e); err != nil {
			skipped = multierror.Append(skipped, err)
			continue
		}
		m[slug] = e
	}
	return m, skipped, nil
}

func validate(slug string, e Entry) error {
	if slug == "" {
		return errors.New("empty slug")
	}
	if strings.HasPrefix(slug, "/") {
		return fmt.Errorf("slug %q: must not start with /", slug)
	}
	if e.Target == "" {
		return fmt.Errorf("slug %q: missing target", slug)
	}
	return nil
}
