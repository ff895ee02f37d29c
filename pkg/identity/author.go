package identity

import (
	"fmt"
	"strings"

	"github.com/agentstation/cffauthor/pkg/errors"
)

// AuthorType discriminates the two CFF author shapes. It is computed once at
// construction and never re-inferred from field presence.
type AuthorType int

// The two CFF author shapes.
const (
	TypePerson AuthorType = iota + 1
	TypeEntity
)

// String returns the CFF name of the author type.
func (t AuthorType) String() string {
	switch t {
	case TypePerson:
		return "person"
	case TypeEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// Author is a CITATION.cff author record: either a person (given + family
// names) or an entity/organization (single name).
type Author struct {
	Type AuthorType

	// Person fields.
	GivenNames  string
	FamilyNames string

	// Entity field.
	Name string

	// Shared optional fields.
	Email string
	ORCID string
	Alias string
}

// AuthorOption configures an Author during construction.
type AuthorOption func(*Author)

// WithEmail sets the author email.
func WithEmail(email string) AuthorOption {
	return func(a *Author) { a.Email = strings.TrimSpace(email) }
}

// WithAuthorORCID sets the author ORCID URL.
func WithAuthorORCID(orcid string) AuthorOption {
	return func(a *Author) { a.ORCID = strings.TrimSpace(orcid) }
}

// WithAlias sets the author alias. For GitHub contributors this is the
// profile URL, which is what makes them recognizable on later runs.
func WithAlias(alias string) AuthorOption {
	return func(a *Author) { a.Alias = strings.TrimSpace(alias) }
}

// NewPersonAuthor constructs a person-shaped author record.
func NewPersonAuthor(givenNames, familyNames string, opts ...AuthorOption) (Author, error) {
	givenNames = strings.TrimSpace(givenNames)
	familyNames = strings.TrimSpace(familyNames)
	if givenNames == "" || familyNames == "" {
		return Author{}, errors.NewConstructionError("cff author", nil, "person requires given-names and family-names")
	}

	a := Author{Type: TypePerson, GivenNames: givenNames, FamilyNames: familyNames}
	for _, opt := range opts {
		opt(&a)
	}
	return a, nil
}

// NewEntityAuthor constructs an entity-shaped author record.
func NewEntityAuthor(name string, opts ...AuthorOption) (Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Author{}, errors.NewConstructionError("cff author", nil, "entity requires a name")
	}

	a := Author{Type: TypeEntity, Name: name}
	for _, opt := range opts {
		opt(&a)
	}
	return a, nil
}

// AuthorFromFields builds an Author from a decoded CFF author mapping.
// The shape is derived structurally: a "name" field means entity, the
// given-names/family-names pair means person, anything else is invalid.
func AuthorFromFields(fields map[string]any) (Author, error) {
	get := func(key string) string {
		v, ok := fields[key]
		if !ok || v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}

	opts := []AuthorOption{}
	if email := get("email"); email != "" {
		opts = append(opts, WithEmail(email))
	}
	if orcid := get("orcid"); orcid != "" {
		opts = append(opts, WithAuthorORCID(orcid))
	}
	if alias := get("alias"); alias != "" {
		opts = append(opts, WithAlias(alias))
	}

	if name := get("name"); name != "" {
		return NewEntityAuthor(name, opts...)
	}
	given, family := get("given-names"), get("family-names")
	if given != "" && family != "" {
		return NewPersonAuthor(given, family, opts...)
	}
	return Author{}, errors.NewConstructionError("cff author", fields, "author needs a name or both given-names and family-names")
}

// FullName returns the comparison name: "{given} {family}" for persons, the
// entity name otherwise.
func (a Author) FullName() string {
	if a.Type == TypePerson {
		return strings.TrimSpace(a.GivenNames + " " + a.FamilyNames)
	}
	return a.Name
}

// Key returns the unique key for logging, chosen by signal priority:
// ORCID, then a GitHub-profile-URL alias, then email, then full name.
func (a Author) Key() string {
	switch {
	case a.ORCID != "":
		return a.ORCID
	case a.Alias != "" && IsProfileURL(a.Alias):
		return a.Alias
	case a.Email != "":
		return a.Email
	default:
		return a.FullName()
	}
}

// Describe returns a human-readable identifier for logs and reports.
func (a Author) Describe() string {
	if a.Alias != "" {
		if username, ok := ParseUsernameFromProfileURL(a.Alias); ok {
			return "@" + username + " (GitHub)"
		}
		return a.Alias + " (Alias)"
	}
	if a.Email != "" {
		return a.Email + " (Email)"
	}
	return a.FullName() + " (Name)"
}
