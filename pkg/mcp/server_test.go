package mcp_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tessiemcp/tessie-mcp/pkg/mcp"
	"github.com/tessiemcp/tessie-mcp/pkg/tools"
)

type fakeTools struct{}

func (fakeTools) Tools() []tools.Descriptor {
	describe := func(name, description string) tools.Descriptor {
		return tools.Descriptor{
			Name:        name,
			Description: description,
			InputSchema: tools.Schema{Type: "object", Properties: map[string]tools.Property{}, Required: []string{}},
		}
	}
	return []tools.Descriptor{
		describe("echo", "Repeats its text argument"),
		describe("fail", "Always fails"),
		describe("bad", "Rejects its arguments"),
		describe("panic", "Panics"),
		describe("retired", "Listed but no longer dispatched"),
	}
}

func (fakeTools) Dispatch(_ context.Context, name string, args tools.Arguments) (string, error) {
	switch name {
	case "echo":
		return fmt.Sprint(args["text"]), nil
	case "fail":
		return "", errors.New("Error honking horn: connection reset")
	case "bad":
		return "", &tools.ArgumentError{Tool: name, Argument: "temperature", Reason: "required"}
	case "panic":
		panic("boom")
	}
	return "", fmt.Errorf("%w: %s", tools.ErrUnknownTool, name)
}

func text(result *sdk.CallToolResult) string {
	ExpectWithOffset(1, result.Content).To(HaveLen(1))
	content, ok := result.Content[0].(*sdk.TextContent)
	ExpectWithOffset(1, ok).To(BeTrue())
	return content.Text
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type reply struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

var _ = Describe("Server", func() {
	var (
		server *mcp.Server
		ctx    context.Context
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)
		server = mcp.NewServer(fakeTools{})
	})

	Context("with an SDK client", func() {
		var (
			session *sdk.ServerSession
			client  *sdk.ClientSession
		)

		BeforeEach(func() {
			clientTransport, serverTransport := sdk.NewInMemoryTransports()
			var err error
			session, err = server.Connect(ctx, serverTransport)
			Expect(err).NotTo(HaveOccurred())
			c := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v1.0.0"}, nil)
			client, err = c.Connect(ctx, clientTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(func() { _ = client.Close() })
		})

		call := func(name string, args map[string]interface{}) (*sdk.CallToolResult, error) {
			return client.CallTool(ctx, &sdk.CallToolParams{Name: name, Arguments: args})
		}

		It("tracks the initialized session", func() {
			Expect(client.InitializeResult().ServerInfo.Name).To(Equal(mcp.ServerName))
			Eventually(func() string {
				s, ok := server.Session(session)
				if !ok {
					return ""
				}
				return s.State()
			}).Should(Equal(mcp.StateInitialized))

			s, _ := server.Session(session)
			Expect(s.ClientName()).To(Equal("test-client"))
			Expect(s.ProtocolVersion()).To(Equal(client.InitializeResult().ProtocolVersion))
		})

		It("forgets sessions that end", func() {
			Eventually(func() bool {
				_, ok := server.Session(session)
				return ok
			}).Should(BeTrue())
			Expect(client.Close()).To(Succeed())
			Eventually(func() bool {
				_, ok := server.Session(session)
				return ok
			}).Should(BeFalse())
		})

		It("lists every tool", func() {
			result, err := client.ListTools(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			var names []string
			for _, tool := range result.Tools {
				names = append(names, tool.Name)
			}
			Expect(names).To(ConsistOf("echo", "fail", "bad", "panic", "retired"))
		})

		It("returns tool output as text content", func() {
			result, err := call("echo", map[string]interface{}{"text": "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(text(result)).To(Equal("hello"))
		})

		It("passes numbers as sent", func() {
			result, err := call("echo", map[string]interface{}{"text": 21.5})
			Expect(err).NotTo(HaveOccurred())
			Expect(text(result)).To(Equal("21.5"))
		})

		It("accepts missing arguments", func() {
			result, err := call("echo", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
		})

		It("flags failed tools", func() {
			result, err := call("fail", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(text(result)).To(Equal("Error honking horn: connection reset"))
		})

		It("rejects unknown tools and invalid arguments", func() {
			_, err := call("get_warp_drive", nil)
			Expect(err).To(MatchError(ContainSubstring("get_warp_drive")))

			_, err = call("retired", nil)
			Expect(err).To(MatchError(ContainSubstring("Unknown tool: retired")))

			_, err = call("bad", nil)
			Expect(err).To(MatchError(ContainSubstring("temperature")))
		})

		It("survives a panicking tool", func() {
			_, err := call("panic", nil)
			Expect(err).To(HaveOccurred())

			result, err := call("echo", map[string]interface{}{"text": "still here"})
			Expect(err).NotTo(HaveOccurred())
			Expect(text(result)).To(Equal("still here"))
		})
	})

	Context("over a byte stream", func() {
		var (
			input  *io.PipeWriter
			output *bufio.Reader
			done   chan error
			stop   context.CancelFunc
		)

		BeforeEach(func() {
			inR, inW := io.Pipe()
			outR, outW := io.Pipe()
			input, output = inW, bufio.NewReader(outR)
			done = make(chan error, 1)

			var serveCtx context.Context
			serveCtx, stop = context.WithCancel(ctx)
			go func() {
				done <- server.Serve(serveCtx, &sdk.IOTransport{Reader: inR, Writer: outW})
			}()
			DeferCleanup(func() {
				stop()
				inW.Close()
				outR.Close()
			})
		})

		send := func(msg string) {
			_, err := io.WriteString(input, msg+"\n")
			ExpectWithOffset(1, err).NotTo(HaveOccurred())
		}

		receive := func() reply {
			line, err := output.ReadBytes('\n')
			ExpectWithOffset(1, err).NotTo(HaveOccurred())
			var r reply
			ExpectWithOffset(1, json.Unmarshal(line, &r)).To(Succeed())
			return r
		}

		request := func(id int, method, params string) reply {
			send(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":%q,"params":%s}`, id, method, params))
			r := receive()
			ExpectWithOffset(1, string(r.ID)).To(Equal(fmt.Sprint(id)))
			return r
		}

		callTool := func(id int, name string) reply {
			return request(id, "tools/call", fmt.Sprintf(`{"name":%q,"arguments":{"text":"hi"}}`, name))
		}

		It("answers newline-delimited JSON-RPC with the expected codes", func() {
			r := request(1, "tools/list", `{}`)
			Expect(r.Error).NotTo(BeNil())

			r = request(2, "initialize", `{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"raw","version":"0"}}`)
			Expect(r.Error).To(BeNil())
			Expect(string(r.Result)).To(ContainSubstring(`"protocolVersion":"2025-03-26"`))
			Expect(string(r.Result)).To(ContainSubstring(`"name":"tessie-mcp"`))

			r = request(3, "initialize", `{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"intruder","version":"0"}}`)
			Expect(r.Error).NotTo(BeNil())
			Expect(r.Error.Code).To(Equal(mcp.CodeInvalidRequest))

			send(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
			Expect(request(4, "ping", `{}`).Error).To(BeNil())

			r = callTool(5, "echo")
			Expect(r.Error).To(BeNil())
			Expect(string(r.Result)).To(ContainSubstring(`"text":"hi"`))
			Expect(string(r.Result)).NotTo(ContainSubstring(`"isError":true`))

			r = callTool(6, "fail")
			Expect(r.Error).To(BeNil())
			Expect(string(r.Result)).To(ContainSubstring(`"isError":true`))

			r = callTool(7, "get_warp_drive")
			Expect(r.Error).NotTo(BeNil())
			Expect(r.Error.Code).To(Equal(mcp.CodeInvalidParams))

			r = callTool(8, "retired")
			Expect(r.Error.Code).To(Equal(mcp.CodeInvalidParams))
			Expect(r.Error.Message).To(Equal("Unknown tool: retired"))

			r = callTool(9, "bad")
			Expect(r.Error.Code).To(Equal(mcp.CodeInvalidParams))
			Expect(r.Error.Message).To(ContainSubstring("temperature"))

			r = callTool(10, "panic")
			Expect(r.Error).NotTo(BeNil())
			Expect(callTool(11, "echo").Error).To(BeNil())
		})

		It("returns cleanly when the context is cancelled", func() {
			stop()
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})
