package mcp_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tessiemcp/tessie-mcp/pkg/mcp"
)

type bearer struct {
	token string
	next  http.RoundTripper
}

func (b bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.next.RoundTrip(req)
}

var _ = Describe("HTTPServer", func() {
	var (
		srv    *httptest.Server
		secret []byte
		ctx    context.Context
	)

	JustBeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(context.Background())
		h := mcp.NewHTTPServer(mcp.NewServer(fakeTools{}), "127.0.0.1:0", secret)
		srv = httptest.NewServer(h.Handler())
		DeferCleanup(func() {
			cancel()
			srv.CloseClientConnections()
			srv.Close()
		})
	})

	connect := func(httpClient *http.Client) (*sdk.ClientSession, error) {
		client := sdk.NewClient(&sdk.Implementation{Name: "http-client", Version: "v1.0.0"}, nil)
		session, err := client.Connect(ctx, &sdk.StreamableClientTransport{
			Endpoint:   srv.URL + mcp.Path,
			HTTPClient: httpClient,
		}, nil)
		if err == nil {
			DeferCleanup(func() { _ = session.Close() })
		}
		return session, err
	}

	post := func(token string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+mcp.Path, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/event-stream")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp
	}

	Context("without authentication", func() {
		BeforeEach(func() {
			secret = nil
		})

		It("reports health", func() {
			resp, err := http.Get(srv.URL + "/health")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(string(body))).To(Equal(`{"server":"tessie-mcp","status":"ok"}`))
		})

		It("serves metrics", func() {
			resp, err := http.Get(srv.URL + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(ContainSubstring("tessie_mcp_sessions"))
		})

		It("serves tools over streamable HTTP", func() {
			session, err := connect(nil)
			Expect(err).NotTo(HaveOccurred())
			result, err := session.CallTool(ctx, &sdk.CallToolParams{
				Name:      "echo",
				Arguments: map[string]interface{}{"text": "over http"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(text(result)).To(Equal("over http"))
		})
	})

	Context("with a secret", func() {
		BeforeEach(func() {
			secret = []byte("correct horse battery staple")
		})

		sign := func(key []byte, method jwt.SigningMethod) string {
			token := jwt.NewWithClaims(method, jwt.MapClaims{
				"sub": "client",
				"exp": time.Now().Add(time.Hour).Unix(),
			})
			signed, err := token.SignedString(key)
			Expect(err).NotTo(HaveOccurred())
			return signed
		}

		It("leaves health open", func() {
			resp, err := http.Get(srv.URL + "/health")
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("rejects missing and foreign tokens", func() {
			resp := post("")
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Bearer"))

			Expect(post(sign([]byte("some other secret"), jwt.SigningMethodHS256)).StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(post(sign(secret, jwt.SigningMethodHS512)).StatusCode).To(Equal(http.StatusUnauthorized))

			_, err := connect(nil)
			Expect(err).To(HaveOccurred())
		})

		It("accepts tokens signed with the secret", func() {
			httpClient := &http.Client{Transport: bearer{token: sign(secret, jwt.SigningMethodHS256), next: http.DefaultTransport}}
			session, err := connect(httpClient)
			Expect(err).NotTo(HaveOccurred())
			result, err := session.ListTools(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Tools).To(HaveLen(len(fakeTools{}.Tools())))
		})
	})
})
