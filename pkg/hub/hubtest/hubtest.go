// Package hubtest serves model repositories over HTTP the way the hub does.
package hubtest

import (
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
)

const SHA = "0123456789abcdef"

// Repos maps a repository id to its files.
type Repos map[string]map[string][]byte

// New starts a hub server for the given repositories. The server is closed with the test.
// A non-empty token is required as bearer authorization on every request.
func New(t *testing.T, token string, repos Repos) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		for id, files := range repos {
			if r.URL.Path == "/api/models/"+id+"/revision/main" {
				var siblings []map[string]string

				for _, name := range slices.Sorted(maps.Keys(files)) {
					siblings = append(siblings, map[string]string{"rfilename": name})
				}

				json.NewEncoder(w).Encode(map[string]any{
					"sha":      SHA,
					"siblings": siblings,
				})

				return
			}

			prefix := "/" + id + "/resolve/" + SHA + "/"

			if name, ok := strings.CutPrefix(r.URL.Path, prefix); ok {
				data, found := files[name]

				if !found {
					break
				}

				w.Write(data)
				return
			}
		}

		http.NotFound(w, r)
	}))

	t.Cleanup(server.Close)
	return server
}
