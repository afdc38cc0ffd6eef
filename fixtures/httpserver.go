package fixtures

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
)

// HTTPServerKey identifies the embedded HTTP server fixture. Its value is an
// *HTTPServer. The scope is per-case: every case gets its own server with an
// empty router, shared by all fixtures and the body within that case.
var HTTPServerKey = fixtest.Key("http_server")

// HTTPServer is a real HTTP server on an ephemeral localhost port. Tests attach
// handlers to Router and point clients at BaseURL.
type HTTPServer struct {
	BaseURL string
	Router  *mux.Router

	server   *http.Server
	listener net.Listener
}

// URLFor returns the absolute URL of a path on this server.
func (s *HTTPServer) URLFor(path string) string {
	return s.BaseURL + path
}

func (s *HTTPServer) close() error {
	return s.server.Close()
}

func startHTTPServer() (*HTTPServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	router := mux.NewRouter()
	server := &http.Server{Handler: router} //nolint:gosec // timeouts are irrelevant for a test-scoped server
	ret := &HTTPServer{
		BaseURL:  fmt.Sprintf("http://%s", listener.Addr()),
		Router:   router,
		server:   server,
		listener: listener,
	}
	go func() {
		_ = server.Serve(listener)
	}()
	return ret, nil
}

func RegisterHTTPServer(reg *fixtest.Registry) error {
	spec, err := fixtest.NewFixture(HTTPServerKey.Name,
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			server, err := startHTTPServer()
			if err != nil {
				return nil, err
			}
			deps.Logger().Printf("started HTTP server at %s", server.BaseURL)
			return server, nil
		},
		fixtest.WithScope(fixtest.ScopePerCase),
		fixtest.WithTeardown(func(value interface{}) error {
			return value.(*HTTPServer).close()
		}))
	if err != nil {
		return err
	}
	return reg.Register(spec)
}
