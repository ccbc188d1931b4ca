package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boxpull/internal/logging"
	"boxpull/internal/webdriver"
)

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

// fakeFolderDriver renders a three-row folder grid: a header row and two
// files.
func fakeFolderDriver() *http.ServeMux {
	rows := map[string]string{
		"row-0": "Name",
		"row-1": "Data_Volume_Report_15012024.xlsx",
		"row-2": "chart.png",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":{"sessionId":"sess-1"}}`)
	})
	mux.HandleFunc("DELETE /session/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":null}`)
	})
	mux.HandleFunc("POST /session/{id}/url", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":null}`)
	})
	mux.HandleFunc("POST /session/{id}/elements", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"value":[{"%s":"row-0"},{"%s":"row-1"},{"%s":"row-2"}]}`,
			elementKey, elementKey, elementKey)
	})
	mux.HandleFunc("POST /session/{id}/element/{eid}/element", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"value":{"%s":"name-of-%s"}}`, elementKey, r.PathValue("eid"))
	})
	mux.HandleFunc("GET /session/{id}/element/{eid}/text", func(w http.ResponseWriter, r *http.Request) {
		var rowID string
		fmt.Sscanf(r.PathValue("eid"), "name-of-%s", &rowID)
		fmt.Fprintf(w, `{"value":%q}`, rows[rowID])
	})
	return mux
}

func testSurface(t *testing.T, serverURL string) *Surface {
	t.Helper()
	client := webdriver.New(serverURL, nil)
	session, err := client.NewSession(context.Background(), true, t.TempDir())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { session.Close(context.Background()) })

	return &Surface{
		session:         session,
		logger:          logging.NewNop(),
		pageTimeout:     2 * time.Second,
		downloadTimeout: 2 * time.Second,
		downloadDir:     t.TempDir(),
	}
}

func TestEnumerateSkipsHeaderRow(t *testing.T) {
	server := httptest.NewServer(fakeFolderDriver())
	defer server.Close()

	surface := testSurface(t, server.URL)
	items, err := surface.Enumerate(context.Background(), "https://app.box.com/s/abc")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items after header skip, got %d", len(items))
	}
	if items[0].Name != "Data_Volume_Report_15012024.xlsx" || !items[0].HasDate {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].RowRef == "" {
		t.Error("row reference must be carried for UI retrieval")
	}
	if items[1].Name != "chart.png" {
		t.Errorf("unexpected second item: %+v", items[1])
	}
}
