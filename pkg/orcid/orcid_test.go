package orcid

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("0000-0002-1825-0097"))
	assert.True(t, ValidFormat("0000-0002-1825-009X"))
	assert.False(t, ValidFormat("0000-0002-1825-009x"))
	assert.False(t, ValidFormat("0000-0002-1825-00971"))
	assert.False(t, ValidFormat("orcid.org/0000-0002-1825-0097"))
	assert.False(t, ValidFormat(""))
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare url", "https://orcid.org/0000-0002-1825-0097", "https://orcid.org/0000-0002-1825-0097"},
		{"embedded in prose", "my id is https://orcid.org/0000-0002-1825-0097 thanks", "https://orcid.org/0000-0002-1825-0097"},
		{"mixed case host and checksum", "HTTPS://ORCID.ORG/0000-0002-1825-009x", "https://orcid.org/0000-0002-1825-009X"},
		{"bare identifier is not a url", "0000-0002-1825-0097", ""},
		{"empty", "", ""},
		{"no orcid", "https://example.com/profile", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURL(tt.text))
		})
	}
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, "0000-0002-1825-0097", ExtractID("https://orcid.org/0000-0002-1825-0097"))
	assert.Equal(t, "0000-0002-1825-0097", ExtractID("0000-0002-1825-0097"))
	assert.Equal(t, "0000-0002-1825-009X", ExtractID("id 0000-0002-1825-009X in bio"))
	assert.Equal(t, "", ExtractID("nothing here"))
	assert.Equal(t, "", ExtractID(""))
}

func TestCacheClear(t *testing.T) {
	cache := NewCache()
	cache.set("a", 1)
	cache.set("b", 2)
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, ok := cache.get("a")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/0000-0002-1825-0097" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(WithAPIURL(srv.URL))
	ctx := context.Background()

	assert.True(t, client.Validate(ctx, "https://orcid.org/0000-0002-1825-0097"))
	assert.True(t, client.Validate(ctx, "0000-0002-1825-0097"))
	assert.Equal(t, 1, calls, "second lookup should hit the cache")

	assert.False(t, client.Validate(ctx, "0000-0002-9999-9999"))
	assert.False(t, client.Validate(ctx, "not-an-orcid"))
	assert.Equal(t, 2, calls, "malformed input should never reach the registry")
}

func TestSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":[
			{"orcid-identifier":{"path":"0000-0002-1825-0097"}},
			{"orcid-identifier":{"path":"0000-0002-9999-9999"}}
		]}`)
	})
	mux.HandleFunc("/0000-0002-1825-0097/personal-details", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":{"credit-name":{"value":"Josiah Carberry"},"given-names":{"value":"Josiah"},"family-name":{"value":"Carberry"}}}`)
	})
	mux.HandleFunc("/0000-0002-9999-9999/personal-details", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":{"given-names":{"value":"Someone"},"family-name":{"value":"Else"}}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(WithAPIURL(srv.URL))
	ctx := context.Background()

	// Name search keeps only records that actually know the name.
	matches := client.Search(ctx, "Josiah Carberry", "")
	assert.Equal(t, []string{"https://orcid.org/0000-0002-1825-0097"}, matches)

	// Email-only search takes the registry's word for it.
	matches = client.Search(ctx, "", "josiah@example.org")
	assert.Len(t, matches, 2)

	// No signal, no query.
	assert.Nil(t, client.Search(ctx, "", ""))
	assert.Nil(t, client.Search(ctx, "  ", "  "))
}

func TestSearchCaching(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer srv.Close()

	client := New(WithAPIURL(srv.URL))
	ctx := context.Background()

	client.Search(ctx, "", "a@example.org")
	client.Search(ctx, "", "a@example.org")
	assert.Equal(t, 1, calls)

	client.Cache().Clear()
	client.Search(ctx, "", "a@example.org")
	assert.Equal(t, 2, calls)
}

func TestNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/0000-0002-1825-0097/personal-details", r.URL.Path)
		require.Equal(t, "application/vnd.orcid+json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"name":{
				"credit-name":{"value":"J. S. Carberry"},
				"given-names":{"value":"Josiah"},
				"family-name":{"value":"Carberry"}
			},
			"other-names":{"other-name":[{"content":"Josiah Stinkney Carberry"},{"content":"J. S. Carberry"}]}
		}`)
	}))
	defer srv.Close()

	client := New(WithAPIURL(srv.URL))
	names, err := client.Names(context.Background(), "https://orcid.org/0000-0002-1825-0097")
	require.NoError(t, err)

	assert.Equal(t, "J. S. Carberry", names.Preferred())
	assert.Equal(t, "Josiah Carberry", names.CombinedName)
	assert.Equal(t, []string{"J. S. Carberry", "Josiah Carberry", "Josiah Stinkney Carberry"}, names.All)

	assert.True(t, names.Knows("josiah carberry"))
	assert.True(t, names.Knows("  Josiah Stinkney Carberry  "))
	assert.False(t, names.Knows("Someone Else"))
}

func TestNamesInvalidInput(t *testing.T) {
	client := New()
	_, err := client.Names(context.Background(), "not-an-orcid")
	require.Error(t, err)
}

func TestScrapeGitHubProfile(t *testing.T) {
	const profile = `<html><body>
		<ul class="vcard-details border-top">
			<li><a href="https://example.com/blog">blog</a></li>
			<li><a href="https://orcid.org/0000-0002-1825-0097">ORCID iD</a></li>
		</ul>
		<a href="https://orcid.org/0000-0002-9999-9999">outside the vcard</a>
	</body></html>`

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Path {
		case "/withbadge":
			fmt.Fprint(w, profile)
		case "/nobadge":
			fmt.Fprint(w, `<html><body><ul class="vcard-details"><li>nothing</li></ul></body></html>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := New(WithGitHubURL(srv.URL))
	ctx := context.Background()

	assert.Equal(t, "https://orcid.org/0000-0002-1825-0097", client.ScrapeGitHubProfile(ctx, "withbadge"))
	assert.Equal(t, "https://orcid.org/0000-0002-1825-0097", client.ScrapeGitHubProfile(ctx, "withbadge"))
	assert.Equal(t, 1, calls, "second scrape should hit the cache")

	assert.Equal(t, "", client.ScrapeGitHubProfile(ctx, "nobadge"))
	assert.Equal(t, "", client.ScrapeGitHubProfile(ctx, "missing"))
}

func TestSplitName(t *testing.T) {
	given, family := splitName("Josiah Stinkney Carberry")
	assert.Equal(t, "Josiah", given)
	assert.Equal(t, "Stinkney Carberry", family)

	given, family = splitName("Cher")
	assert.Equal(t, "Cher", given)
	assert.Equal(t, "", family)
}
