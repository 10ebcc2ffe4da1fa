// Package dap implements the session layer of the Debug Adapter Protocol.
//
// A Session sits between a byte stream and a set of typed handlers. It
// encodes outgoing requests, responses and events, decodes incoming ones,
// matches responses to the requests that caused them and routes each
// incoming request or event to the handler registered for its command or
// event name. The same type serves both ends of a connection: a debugger
// front end and a debug adapter each hold one.
//
// # Message Types
//
// Any struct becomes a message by declaring its wire tag with a value
// receiver method:
//
//	type EvaluateRequest struct {
//	    Expression string `json:"expression"`
//	    FrameID    *int   `json:"frameId,omitempty"`
//	}
//
//	func (EvaluateRequest) Command() string { return "evaluate" }
//
//	type EvaluateResponse struct {
//	    Result string `json:"result"`
//	}
//
//	func (EvaluateResponse) Command() string { return "evaluate" }
//
// Optional fields are pointers or slices tagged omitempty; an absent field
// decodes as nil rather than as a zero value. A few standard messages such
// as InitializeRequest and StoppedEvent are predefined.
//
// # Answering Requests
//
//	s, err := dap.NewSession(dap.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//
//	dap.RegisterHandler(s, func(ctx context.Context, req EvaluateRequest) EvaluateResponse {
//	    return EvaluateResponse{Result: eval(req.Expression)}
//	})
//
//	dap.RegisterResultHandler(s, func(ctx context.Context, req dap.SetBreakpointsRequest) dap.ResponseOrError[dap.SetBreakpointsResponse] {
//	    if req.Source.Path == "" {
//	        return dap.Failure[dap.SetBreakpointsResponse](dap.Errorf("source has no path"))
//	    }
//	    return dap.Success(install(req))
//	})
//
//	s.OnError(func(err error) { log.Warn("session error", "error", err) })
//
//	if err := s.Bind(os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
//	<-s.Done()
//
// Requests with no registered handler are answered with an error response.
// Events with no registered handler are dropped.
//
// # Sending Requests
//
// Send returns a Future that resolves when the response arrives or the
// session ends:
//
//	result := dap.Send[EvaluateResponse](s, EvaluateRequest{Expression: "x + 1"}).Get()
//	if result.IsError() {
//	    return result.Err
//	}
//	fmt.Println(result.Response.Result)
//
// # Transports
//
// Bind accepts any io.Reader and io.Writer. Messages are framed with
// Content-Length headers by default (WithFraming selects newline framing)
// and encoded as JSON (WithCodec selects CBOR). Pipe connects two sessions
// in one process, Serve and Dial run sessions over TCP, and LaunchAdapter
// starts a debug adapter executable whose stdio a session can bind to.
package dap
