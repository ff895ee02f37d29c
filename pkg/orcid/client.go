package orcid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/cffauthor/pkg/constants"
	"github.com/agentstation/cffauthor/pkg/errors"
	"github.com/agentstation/cffauthor/pkg/logging"
)

// Client queries the public ORCID registry and the GitHub profile page.
type Client struct {
	http      *http.Client
	apiURL    string
	githubURL string
	userAgent string
	cache     *Cache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAPIURL overrides the registry API base URL, mainly for tests.
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithGitHubURL overrides the github.com base URL used for badge scraping,
// mainly for tests.
func WithGitHubURL(u string) Option {
	return func(c *Client) { c.githubURL = strings.TrimRight(u, "/") }
}

// WithCache sets the lookup cache. Sharing one cache across clients shares
// their memoization.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// New creates a registry client with per-call timeouts suited to a run that
// must never hang on a slow registry.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: constants.RegistryLookupTimeout},
		apiURL:    constants.ORCIDPublicAPIURL,
		githubURL: constants.GitHubURL,
		userAgent: constants.UserAgent,
		cache:     NewCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache exposes the client's lookup cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Validate reports whether orcid (a URL or a bare identifier) is
// well-formed and resolves to an existing registry record. Network failure
// counts as invalid; the caller treats that as "no evidence", never fatal.
func (c *Client) Validate(ctx context.Context, orcid string) bool {
	id := ExtractID(orcid)
	if id == "" || !ValidFormat(id) {
		return false
	}

	key := "validate:" + id
	if v, ok := c.cache.get(key); ok {
		return v.(bool)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RegistryValidateTimeout)
	defer cancel()

	resp, err := c.getJSON(ctx, c.apiURL+"/"+id)
	valid := false
	if err == nil {
		_ = resp.Body.Close()
		valid = resp.StatusCode == http.StatusOK
	}

	c.cache.set(key, valid)
	return valid
}

// searchResponse mirrors the registry search result envelope.
type searchResponse struct {
	Result []struct {
		OrcidIdentifier struct {
			Path string `json:"path"`
		} `json:"orcid-identifier"`
	} `json:"result"`
}

// Search queries the registry by name and/or email and returns matching
// ORCID URLs. Name searches are verified against the record's known names
// before acceptance, because the search endpoint matches loosely. Errors
// degrade to an empty result.
func (c *Client) Search(ctx context.Context, name, email string) []string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	log := logging.Ctx(ctx)

	var queryParts []string
	if name != "" {
		given, family := splitName(name)
		if given != "" {
			queryParts = append(queryParts, fmt.Sprintf("given-names:%q", given))
		}
		if family != "" {
			queryParts = append(queryParts, fmt.Sprintf("family-name:%q", family))
		}
	}
	if email != "" {
		queryParts = append(queryParts, fmt.Sprintf("email:%q", email))
	}
	if len(queryParts) == 0 {
		log.Warn().Msg("no name or email provided for ORCID search")
		return nil
	}

	key := "search:" + name + "|" + email
	if v, ok := c.cache.get(key); ok {
		return v.([]string)
	}

	query := strings.Join(queryParts, " AND ")
	searchURL := c.apiURL + "/search/?q=" + url.QueryEscape(query)

	var matches []string
	var parsed searchResponse
	if err := c.fetchJSON(ctx, searchURL, &parsed); err != nil {
		log.Debug().Err(err).Str("query", query).Msg("ORCID search failed")
		c.cache.set(key, matches)
		return matches
	}

	for _, result := range parsed.Result {
		id := result.OrcidIdentifier.Path
		if id == "" {
			continue
		}
		candidate := URL(id)
		if name != "" {
			// The record must actually know this contributor by the name we
			// searched for.
			names, err := c.Names(ctx, candidate)
			if err != nil || !names.Knows(name) {
				continue
			}
			log.Info().Str("name", name).Str("orcid", candidate).Msg("ORCID search matched by name")
		} else {
			log.Info().Str("email", email).Str("orcid", candidate).Msg("ORCID search matched by email")
		}
		matches = append(matches, candidate)
	}

	c.cache.set(key, matches)
	return matches
}

// Names holds the display names attached to an ORCID record.
type Names struct {
	CreditName   string
	CombinedName string // "{given-names} {family-name}"
	OtherNames   []string
	All          []string
}

// Preferred returns the best display name on the record.
func (n Names) Preferred() string {
	if n.CreditName != "" {
		return n.CreditName
	}
	if n.CombinedName != "" {
		return n.CombinedName
	}
	if len(n.All) > 0 {
		return n.All[0]
	}
	return ""
}

// Knows reports whether name matches any known name, caselessly.
func (n Names) Knows(name string) bool {
	target := strings.ToLower(strings.TrimSpace(name))
	for _, known := range n.All {
		if strings.ToLower(strings.TrimSpace(known)) == target {
			return true
		}
	}
	return false
}

// personalDetails mirrors the registry personal-details document.
type personalDetails struct {
	Name struct {
		CreditName struct {
			Value string `json:"value"`
		} `json:"credit-name"`
		GivenNames struct {
			Value string `json:"value"`
		} `json:"given-names"`
		FamilyName struct {
			Value string `json:"value"`
		} `json:"family-name"`
	} `json:"name"`
	OtherNames struct {
		OtherName []struct {
			Content string `json:"content"`
		} `json:"other-name"`
	} `json:"other-names"`
}

// Names fetches the display names for an ORCID (URL or bare identifier).
func (c *Client) Names(ctx context.Context, orcid string) (Names, error) {
	id := ExtractID(orcid)
	if id == "" {
		return Names{}, errors.NewConstructionError("orcid lookup", orcid, "not a valid ORCID URL or identifier")
	}

	key := "names:" + id
	if v, ok := c.cache.get(key); ok {
		return v.(Names), nil
	}

	var details personalDetails
	if err := c.fetchJSON(ctx, c.apiURL+"/"+id+"/personal-details", &details); err != nil {
		return Names{}, err
	}

	names := Names{
		CreditName: strings.TrimSpace(details.Name.CreditName.Value),
	}
	given := strings.TrimSpace(details.Name.GivenNames.Value)
	family := strings.TrimSpace(details.Name.FamilyName.Value)
	if given != "" && family != "" {
		names.CombinedName = given + " " + family
	}
	if names.CreditName != "" {
		names.All = append(names.All, names.CreditName)
	}
	if names.CombinedName != "" && names.CombinedName != names.CreditName {
		names.All = append(names.All, names.CombinedName)
	}
	for _, other := range details.OtherNames.OtherName {
		name := strings.TrimSpace(other.Content)
		if name == "" {
			continue
		}
		names.OtherNames = append(names.OtherNames, name)
		duplicate := false
		for _, existing := range names.All {
			if existing == name {
				duplicate = true
				break
			}
		}
		if !duplicate {
			names.All = append(names.All, name)
		}
	}

	c.cache.set(key, names)
	return names, nil
}

// fetchJSON performs a GET with registry headers and decodes the body.
func (c *Client) fetchJSON(ctx context.Context, url string, target any) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RegistryLookupTimeout)
	defer cancel()

	resp, err := c.getJSON(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{
			Service:    "orcid",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   url,
		}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", url, err)
	}
	return nil
}

// getJSON issues a GET request with the registry Accept header.
func (c *Client) getJSON(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapAPI("orcid", 0, err)
	}
	req.Header.Set("Accept", "application/vnd.orcid+json")
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapAPI("orcid", 0, err)
	}
	return resp, nil
}

// splitName splits a display name into given and family parts on the first
// space, matching how CFF person records are derived.
func splitName(name string) (given, family string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	given = parts[0]
	if len(parts) > 1 {
		family = strings.TrimSpace(parts[1])
	}
	return given, family
}
