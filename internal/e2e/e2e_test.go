package e2e

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"aardd/internal/app"
	"aardd/pkg/types"
)

// TestE2E_FallbackPortServesContent occupies the preferred port so the
// daemon binds a random fallback, then follows a lookup result's URL.
func TestE2E_FallbackPortServesContent(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()
	preferred := busy.Addr().(*net.TCPAddr).Port
	fallback := freePort(t)

	d := startDaemon(t, app.Config{
		Port:    preferred,
		DataDir: t.TempDir(),
		Intn:    func(int) int { return fallback - 1026 },
	})
	defer d.stop(t)

	if _, got := d.app.Binding().Get(); got != fallback {
		t.Fatalf("bound port %d, want fallback %d", got, fallback)
	}

	resp, body := httpPostJSON(t, d.base+"/sources", types.AddSourceRequest{Path: createTempDictDir(t, "d1", "apple", "banana")})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add source: %d %s", resp.StatusCode, body)
	}

	resp, body = httpGet(t, d.base+"/lookup?q=apple")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup: %d %s", resp.StatusCode, body)
	}
	var lr types.LookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		t.Fatal(err)
	}
	if len(lr.Entries) != 1 {
		t.Fatalf("entries %+v", lr.Entries)
	}
	u := lr.Entries[0].URL
	if !strings.Contains(u, ":"+strconv.Itoa(fallback)+"/content/d1/apple") {
		t.Fatalf("entry url %q does not point at the bound server", u)
	}

	resp, body = httpGet(t, u)
	if resp.StatusCode != http.StatusOK || string(body) != "about apple" {
		t.Fatalf("content: %d %q", resp.StatusCode, body)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(d.app.History()) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("viewed entry not recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestE2E_StateSurvivesRestart checks the dictionary list, bookmarks and
// the last query are restored by a second daemon on the same data dir.
func TestE2E_StateSurvivesRestart(t *testing.T) {
	data := t.TempDir()
	p := createTempDictDir(t, "d1", "apple", "banana")

	d := startDaemon(t, app.Config{Port: freePort(t), DataDir: data})
	if resp, body := httpPostJSON(t, d.base+"/sources", types.AddSourceRequest{Path: p}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add source: %d %s", resp.StatusCode, body)
	}
	_, body := httpGet(t, d.base+"/lookup?q=banana")
	var lr types.LookupResponse
	if err := json.Unmarshal(body, &lr); err != nil || len(lr.Entries) != 1 {
		t.Fatalf("lookup: %v %s", err, body)
	}
	if resp, body := httpPostJSON(t, d.base+"/bookmarks", types.BookmarkRequest{ContentURL: lr.Entries[0].ContentURL}); resp.StatusCode != http.StatusCreated {
		t.Fatalf("bookmark: %d %s", resp.StatusCode, body)
	}
	d.stop(t)

	d2 := startDaemon(t, app.Config{Port: freePort(t), DataDir: data})
	defer d2.stop(t)

	_, body = httpGet(t, d2.base+"/lookup")
	var cur types.LookupResponse
	if err := json.Unmarshal(body, &cur); err != nil {
		t.Fatal(err)
	}
	if cur.Query != "banana" || len(cur.Entries) != 1 || cur.Entries[0].Key != "banana" {
		t.Fatalf("restored result %+v", cur)
	}
	_, body = httpGet(t, d2.base+"/bookmarks")
	var bm types.BookmarksResponse
	if err := json.Unmarshal(body, &bm); err != nil {
		t.Fatal(err)
	}
	if len(bm.Items) != 1 || !bm.Items[0].Available {
		t.Fatalf("restored bookmarks %+v", bm.Items)
	}
}
