package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// SiteRefKind tells how a stored site column is to be interpreted.
type SiteRefKind int

// Site reference kinds.
const (
	SiteRefNone SiteRefKind = iota
	SiteRefID
	SiteRefName
)

// SiteRef is the decoded form of a site column on items and movements. The
// column holds a site id as text, but legacy rows may hold the site name
// itself, so it is decoded once here instead of at every query.
type SiteRef struct {
	Kind SiteRefKind
	ID   int64
	Name string

	// raw is the stored text. For id references it is kept so the name
	// fallback can match legacy sites whose name is all digits.
	raw string
}

// NoSite returns the empty site reference.
func NoSite() SiteRef { return SiteRef{} }

// SiteByID returns a reference to a site by primary key.
func SiteByID(id int64) SiteRef {
	return SiteRef{Kind: SiteRefID, ID: id, raw: strconv.FormatInt(id, 10)}
}

// SiteByName returns a legacy reference that stores the site name directly.
func SiteByName(name string) SiteRef {
	return SiteRef{Kind: SiteRefName, Name: name, raw: name}
}

// ParseSiteRef decodes stored column text. All-digit text is an id, anything
// else non-empty is a name.
func ParseSiteRef(text string) SiteRef {
	if text == "" {
		return NoSite()
	}
	if isDigits(text) {
		if id, err := strconv.ParseInt(text, 10, 64); err == nil {
			return SiteRef{Kind: SiteRefID, ID: id, raw: text}
		}
	}
	return SiteByName(text)
}

// IsNone reports whether the reference points at no site.
func (r SiteRef) IsNone() bool { return r.Kind == SiteRefNone }

// Text returns the stored column text, or "" for no site.
func (r SiteRef) Text() string {
	switch r.Kind {
	case SiteRefID:
		if r.raw != "" {
			return r.raw
		}
		return strconv.FormatInt(r.ID, 10)
	case SiteRefName:
		return r.Name
	}
	return ""
}

// Equal reports whether two references store the same column text.
func (r SiteRef) Equal(o SiteRef) bool {
	return r.Kind == o.Kind && r.Text() == o.Text()
}

func (r SiteRef) String() string {
	switch r.Kind {
	case SiteRefID:
		return "site#" + r.Text()
	case SiteRefName:
		return strconv.Quote(r.Name)
	}
	return "none"
}

// Scan implements sql.Scanner.
func (r *SiteRef) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = NoSite()
	case string:
		*r = ParseSiteRef(v)
	case []byte:
		*r = ParseSiteRef(string(v))
	case int64:
		*r = SiteByID(v)
	default:
		return fmt.Errorf("scanning site reference: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer. Site columns are text in every dialect.
func (r SiteRef) Value() (driver.Value, error) {
	if r.IsNone() {
		return nil, nil
	}
	return r.Text(), nil
}

// MarshalJSON encodes ids as numbers, legacy names as strings and no site as null.
func (r SiteRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case SiteRefID:
		return json.Marshal(r.ID)
	case SiteRefName:
		return json.Marshal(r.Name)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts what MarshalJSON produces. Ids are decoded as
// integers, never through float64.
func (r *SiteRef) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decoding site reference: %w", err)
	}
	switch v := v.(type) {
	case nil:
		*r = NoSite()
	case json.Number:
		id, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("decoding site reference: invalid id %s", v)
		}
		*r = SiteByID(id)
	case string:
		*r = SiteByName(v)
	default:
		return fmt.Errorf("decoding site reference: unsupported value %s", data)
	}
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
