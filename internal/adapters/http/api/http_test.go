package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scanmark/internal/adapters/http/api"
	app "github.com/okian/scanmark/internal/app"
	"github.com/okian/scanmark/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const testMaxPayload = 1 << 10

// newTestServer stands up the full HTTP surface over a real engine rooted
// in a temp directory.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := app.New(app.WithDataDir(t.TempDir()))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc, api.WithMaxPayloadBytes(testMaxPayload)).Register(context.Background(), mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, out
}

func TestEventEndpoints(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts := newTestServer(t)

		Convey("When listing events on a fresh root", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/events", nil)

			Convey("Then an empty array comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(string(body)), ShouldEqual, "[]")
			})
		})

		Convey("When creating an event", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/events", map[string]string{"name": "expo"})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			Convey("Then it shows up in the listing", func() {
				resp, body := doJSON(t, http.MethodGet, ts.URL+"/events", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var events []struct {
					Name string `json:"name"`
				}
				So(json.Unmarshal(body, &events), ShouldBeNil)
				So(events, ShouldHaveLength, 1)
				So(events[0].Name, ShouldEqual, "expo")
			})

			Convey("And creating it again returns 409", func() {
				resp, _ := doJSON(t, http.MethodPost, ts.URL+"/events", map[string]string{"name": "expo"})
				So(resp.StatusCode, ShouldEqual, http.StatusConflict)
			})

			Convey("And deleting it returns 204", func() {
				resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/events/expo", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
			})
		})

		Convey("When the event name is invalid", func() {
			Convey("Then an empty name is rejected", func() {
				resp, _ := doJSON(t, http.MethodPost, ts.URL+"/events", map[string]string{"name": "  "})
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And a name with a path separator is rejected", func() {
				resp, _ := doJSON(t, http.MethodPost, ts.URL+"/events", map[string]string{"name": "a/b"})
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When deleting an absent event", func() {
			resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/events/ghost", nil)

			Convey("Then 404 comes back with the error shape", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestPlayerEndpoints(t *testing.T) {
	Convey("Given a server with one event", t, func() {
		ts := newTestServer(t)
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/events", map[string]string{"name": "expo"})
		So(resp.StatusCode, ShouldEqual, http.StatusCreated)

		Convey("When replacing the player set", func() {
			players := []map[string]string{
				{"id": "0", "name": "a"},
				{"id": "1", "name": "b"},
			}
			resp, _ := doJSON(t, http.MethodPut, ts.URL+"/events/expo/players", players)
			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

			Convey("Then the listing returns the set", func() {
				resp, body := doJSON(t, http.MethodGet, ts.URL+"/events/expo/players", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var out []struct {
					ID     string `json:"id"`
					Name   string `json:"name"`
					ScanID string `json:"scan_id"`
				}
				So(json.Unmarshal(body, &out), ShouldBeNil)
				So(out, ShouldHaveLength, 2)
			})
		})

		Convey("When a player is missing its id", func() {
			resp, _ := doJSON(t, http.MethodPut, ts.URL+"/events/expo/players",
				[]map[string]string{{"name": "nameless"}})

			Convey("Then 400 comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When targeting an absent event", func() {
			resp, _ := doJSON(t, http.MethodGet, ts.URL+"/events/ghost/players", nil)

			Convey("Then 404 comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestScanEndpoints(t *testing.T) {
	Convey("Given a server with one event and one player", t, func() {
		ts := newTestServer(t)
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/events", map[string]string{"name": "expo"})
		So(resp.StatusCode, ShouldEqual, http.StatusCreated)
		resp, _ = doJSON(t, http.MethodPut, ts.URL+"/events/expo/players",
			[]map[string]string{{"id": "0", "name": "a"}})
		So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

		postScan := func(data []byte) string {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/events/expo/scans",
				map[string][]byte{"data": data})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			var out struct {
				ID string `json:"id"`
			}
			So(json.Unmarshal(body, &out), ShouldBeNil)
			So(out.ID, ShouldNotBeEmpty)
			return out.ID
		}

		Convey("When posting and fetching a scan", func() {
			id := postScan([]byte("payload"))
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/events/expo/scans/"+id, nil)

			Convey("Then the payload comes back on the single-scan read", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out struct {
					ID       string `json:"id"`
					PlayerID string `json:"player_id"`
					Data     []byte `json:"data"`
				}
				So(json.Unmarshal(body, &out), ShouldBeNil)
				So(out.ID, ShouldEqual, id)
				So(out.PlayerID, ShouldBeEmpty)
				So(out.Data, ShouldResemble, []byte("payload"))
			})

			Convey("And the listing omits payloads", func() {
				resp, body := doJSON(t, http.MethodGet, ts.URL+"/events/expo/scans", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldNotContainSubstring, "data")
			})
		})

		Convey("When marking a scan", func() {
			id := postScan([]byte("payload"))
			resp, _ := doJSON(t, http.MethodPut, ts.URL+"/events/expo/scans/"+id+"/mark",
				map[string]string{"player_id": "0"})
			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

			Convey("Then the unmarked-only listing is empty", func() {
				resp, body := doJSON(t, http.MethodGet, ts.URL+"/events/expo/scans?unmarked_only=true", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(string(body)), ShouldEqual, "[]")
			})

			Convey("And the consistency check reports no violations", func() {
				resp, body := doJSON(t, http.MethodGet, ts.URL+"/events/expo/check", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out struct {
					Violations []string `json:"violations"`
				}
				So(json.Unmarshal(body, &out), ShouldBeNil)
				So(out.Violations, ShouldBeEmpty)
			})

			Convey("And marking for an absent player returns 404", func() {
				resp, _ := doJSON(t, http.MethodPut, ts.URL+"/events/expo/scans/"+id+"/mark",
					map[string]string{"player_id": "99"})
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the payload is missing", func() {
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/events/expo/scans", map[string]any{})

			Convey("Then 400 comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the payload exceeds the cap", func() {
			big := bytes.Repeat([]byte("x"), testMaxPayload*2)
			resp, _ := doJSON(t, http.MethodPost, ts.URL+"/events/expo/scans",
				map[string][]byte{"data": big})

			Convey("Then 413 comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})

		Convey("When fetching an absent scan", func() {
			resp, _ := doJSON(t, http.MethodGet, ts.URL+"/events/expo/scans/no-such-scan", nil)

			Convey("Then 404 comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts := newTestServer(t)

		Convey("When probing /healthz", func() {
			resp, _ := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)

			Convey("Then it answers 200", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When fetching /stats", func() {
			resp, body := doJSON(t, http.MethodGet, ts.URL+"/stats", nil)

			Convey("Then the engine state is reported", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out map[string]any
				So(json.Unmarshal(body, &out), ShouldBeNil)
				So(out["started"], ShouldEqual, true)
			})
		})

		Convey("When hitting an unknown scoped path", func() {
			resp, _ := doJSON(t, http.MethodGet, ts.URL+"/events/expo/unknown", nil)

			Convey("Then 404 comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestErrorShape(t *testing.T) {
	Convey("Given a running server", t, func() {
		ts := newTestServer(t)

		Convey("When an engine error reaches the wire", func() {
			resp, body := doJSON(t, http.MethodDelete, ts.URL+"/events/ghost", nil)

			Convey("Then the body carries a code and message", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				var out struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				So(json.Unmarshal(body, &out), ShouldBeNil)
				So(out.Code, ShouldEqual, "not_found")
				So(out.Message, ShouldContainSubstring, "ghost")
			})
		})

		Convey("When the request body is not JSON", func() {
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/events", strings.NewReader("not json"))
			So(err, ShouldBeNil)
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			Convey("Then 400 comes back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}
