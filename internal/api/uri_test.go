package api

import (
	"errors"
	"strings"
	"testing"
)

func testSettings(t *testing.T, countryCode string, opts ...SettingsOption) ClientSettings {
	t.Helper()
	opts = append([]SettingsOption{WithBaseURLs("http://api.example/", "https://sapi.example/")}, opts...)
	s, err := NewClientSettings("test-client", countryCode, opts...)
	if err != nil {
		t.Fatalf("failed to build settings: %v", err)
	}
	return s
}

func TestBuildURI(t *testing.T) {
	t.Run("territory scoped path", func(t *testing.T) {
		settings := testSettings(t, "gb")
		desc := Descriptor{RequiresCountryCode: true, RequiresEmptyQuerystring: true}

		uri, err := BuildURI(desc, settings, settings.BaseURL(false), "creators/123456/products/", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		expected := "http://api.example/1.x/gb/creators/123456/products/"
		if uri != expected {
			t.Errorf("expected %s, got %s", expected, uri)
		}
	})

	t.Run("blank territory ignores the country code", func(t *testing.T) {
		settings := testSettings(t, "")
		desc := Descriptor{RequiresCountryCode: true, UseBlankTerritory: true, Secured: true}

		uri, err := BuildURI(desc, settings, settings.BaseURL(true), "users/u1/playhistory/", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasPrefix(uri, "https://sapi.example/1.x/-/users/u1/playhistory/?client_id=") {
			t.Errorf("unexpected uri %s", uri)
		}
	})

	t.Run("no territory segment when not required", func(t *testing.T) {
		settings := testSettings(t, "gb")
		uri, err := BuildURI(Descriptor{}, settings, settings.BaseURL(false), "genres/", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if uri != "http://api.example/1.x/genres/?client_id=test-client" {
			t.Errorf("unexpected uri %s", uri)
		}
	})

	t.Run("empty querystring omits client_id", func(t *testing.T) {
		settings := testSettings(t, "gb")
		desc := Descriptor{Secured: true, RequiresEmptyQuerystring: true}
		var q Query
		q.Add("ignored", "value")

		uri, err := BuildURI(desc, settings, settings.BaseURL(true), "token/", &q)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(uri, "?") {
			t.Errorf("expected no query string, got %s", uri)
		}
	})

	t.Run("parameter order and escaping", func(t *testing.T) {
		settings := testSettings(t, "gb", WithLanguage("en-GB"))
		desc := Descriptor{RequiresCountryCode: true, Domain: "music"}
		var q Query
		q.Add("q", "Rock & Roll")
		q.AddInt("itemsperpage", 5)
		q.AddIfSet("genre", "")

		uri, err := BuildURI(desc, settings, settings.BaseURL(false), "search/", &q)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		expected := "http://api.example/1.x/gb/search/?client_id=test-client&domain=music&lang=en-GB&q=Rock%20%26%20Roll&itemsperpage=5"
		if uri != expected {
			t.Errorf("expected %s, got %s", expected, uri)
		}
	})

	t.Run("caller pairs keep insertion order", func(t *testing.T) {
		settings := testSettings(t, "gb")
		var q Query
		q.Add("b", "2")
		q.Add("a", "1")
		q.Add("c", "3")

		uri, err := BuildURI(Descriptor{}, settings, settings.BaseURL(false), "x/", &q)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.HasSuffix(uri, "&b=2&a=1&c=3") {
			t.Errorf("unexpected order in %s", uri)
		}
	})

	t.Run("missing client id", func(t *testing.T) {
		_, err := BuildURI(Descriptor{}, ClientSettings{APIBaseURL: DefaultAPIBaseURL}, DefaultAPIBaseURL, "genres/", nil)
		if !errors.Is(err, ErrCredentialsRequired) {
			t.Errorf("expected ErrCredentialsRequired, got %v", err)
		}
	})

	t.Run("missing country code", func(t *testing.T) {
		settings := testSettings(t, "")
		_, err := BuildURI(Descriptor{RequiresCountryCode: true}, settings, settings.BaseURL(false), "genres/", nil)
		if !errors.Is(err, ErrCountryCodeRequired) {
			t.Errorf("expected ErrCountryCodeRequired, got %v", err)
		}
	})
}

func TestQuery(t *testing.T) {
	var q Query
	q.Add("a", "1")
	q.AddIfSet("skip", "")
	q.AddInt("n", 42)

	if q.Len() != 2 {
		t.Fatalf("expected 2 params, got %d", q.Len())
	}
	if v, ok := q.Get("n"); !ok || v != "42" {
		t.Errorf("expected n=42, got %q (%v)", v, ok)
	}
	if _, ok := q.Get("skip"); ok {
		t.Error("expected empty value to be skipped")
	}

	params := q.Params()
	params[0].Value = "changed"
	if v, _ := q.Get("a"); v != "1" {
		t.Error("expected Params to return a copy")
	}
}
