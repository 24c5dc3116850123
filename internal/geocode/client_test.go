package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reportes_backend/platform/logger"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, logger.New("test"))
}

func TestReverseUsesDisplayName(t *testing.T) {
	var gotQuery map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"format":         q.Get("format"),
			"zoom":           q.Get("zoom"),
			"addressdetails": q.Get("addressdetails"),
			"lat":            q.Get("lat"),
			"lon":            q.Get("lon"),
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Av. Reforma 222, Juárez, Ciudad de México, México"}`))
	})

	name, err := c.Reverse(context.Background(), 19.4326, -99.1332)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if name != "Av. Reforma 222, Juárez, Ciudad de México, México" {
		t.Fatalf("name = %q", name)
	}
	want := map[string]string{
		"format": "jsonv2", "zoom": "18", "addressdetails": "1",
		"lat": "19.4326", "lon": "-99.1332",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestReverseSynthesizesName(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"display_name": "",
			"address": {
				"road": "Calle 5 de Mayo",
				"house_number": "12",
				"suburb": "Centro",
				"city": "Puebla",
				"state": "Puebla",
				"country": "México"
			}
		}`))
	})

	name, err := c.Reverse(context.Background(), 19.04, -98.2)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	// Duplicate "Puebla" collapses to one part.
	want := "Calle 5 de Mayo, 12, Centro, Puebla, México"
	if name != want {
		t.Fatalf("name = %q, want %q", name, want)
	}
}

func TestReverseEmptyResultIsNotAnError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"","address":{}}`))
	})

	name, err := c.Reverse(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if name != "" {
		t.Fatalf("name = %q, want empty", name)
	}
}

func TestReverseUpstreamErrorIsTransient(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Reverse(context.Background(), 1, 2)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
}

func TestReverseBadPayloadIsTransient(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := c.Reverse(context.Background(), 1, 2)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
}
