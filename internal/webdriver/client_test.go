package webdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeDriver implements just enough of the wire protocol for the client.
type fakeDriver struct {
	mux      *http.ServeMux
	sessions int
	clicks   []string
}

func newFakeDriver() *fakeDriver {
	d := &fakeDriver{mux: http.NewServeMux()}

	d.mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		d.sessions++
		fmt.Fprintf(w, `{"value":{"sessionId":"sess-%d"}}`, d.sessions)
	})
	d.mux.HandleFunc("DELETE /session/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":null}`)
	})
	d.mux.HandleFunc("POST /session/{id}/url", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":null}`)
	})
	d.mux.HandleFunc("POST /session/{id}/elements", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["value"] == "div[role='row']" {
			fmt.Fprintf(w, `{"value":[{"%s":"row-1"},{"%s":"row-2"}]}`, webElementKey, webElementKey)
			return
		}
		fmt.Fprint(w, `{"value":[]}`)
	})
	d.mux.HandleFunc("POST /session/{id}/element", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"value":{"error":"no such element","message":"nope"}}`)
	})
	d.mux.HandleFunc("GET /session/{id}/element/{eid}/text", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"value":"Text of %s"}`, r.PathValue("eid"))
	})
	d.mux.HandleFunc("POST /session/{id}/element/{eid}/click", func(w http.ResponseWriter, r *http.Request) {
		d.clicks = append(d.clicks, r.PathValue("eid"))
		fmt.Fprint(w, `{"value":null}`)
	})
	return d
}

func TestSessionLifecycleAndElements(t *testing.T) {
	driver := newFakeDriver()
	server := httptest.NewServer(driver.mux)
	defer server.Close()

	ctx := context.Background()
	client := New(server.URL, server.Client())

	session, err := client.NewSession(ctx, true, "/tmp/downloads")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer session.Close(ctx)

	if err := session.Navigate(ctx, "https://app.box.com/s/abc"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	rows, err := session.FindElements(ctx, "div[role='row']")
	if err != nil {
		t.Fatalf("FindElements: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	text, err := rows[0].Text(ctx)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Text of row-1" {
		t.Fatalf("unexpected text %q", text)
	}

	if err := rows[1].Click(ctx); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if len(driver.clicks) != 1 || driver.clicks[0] != "row-2" {
		t.Fatalf("unexpected clicks: %v", driver.clicks)
	}
}

func TestFindElementMissingMapsToSentinel(t *testing.T) {
	driver := newFakeDriver()
	server := httptest.NewServer(driver.mux)
	defer server.Close()

	ctx := context.Background()
	session, err := New(server.URL, server.Client()).NewSession(ctx, true, "")
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close(ctx)

	if _, err := session.FindElement(ctx, "button.gone"); !errors.Is(err, ErrNoSuchElement) {
		t.Fatalf("expected ErrNoSuchElement, got %v", err)
	}
}

func TestWaitForElementsTimesOut(t *testing.T) {
	driver := newFakeDriver()
	server := httptest.NewServer(driver.mux)
	defer server.Close()

	ctx := context.Background()
	session, err := New(server.URL, server.Client()).NewSession(ctx, true, "")
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close(ctx)

	start := time.Now()
	if _, err := session.WaitForElements(ctx, "li.never", 300*time.Millisecond); err == nil {
		t.Fatal("expected timeout")
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("wait did not respect its bound")
	}
}
