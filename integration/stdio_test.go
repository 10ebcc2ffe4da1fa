//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dap "github.com/wagiedev/dap-session-go"
)

// TestStdio_FullConversation drives initialize, setBreakpoints, evaluate and
// disconnect against the adapter over its stdin and stdout.
func TestStdio_FullConversation(t *testing.T) {
	for _, codec := range []string{dap.CodecJSON, dap.CodecCBOR} {
		t.Run(codec, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			initialized := make(chan struct{}, 1)
			output := make(chan string, 4)
			terminated := make(chan struct{}, 1)

			configure := func(s *dap.Session) {
				dap.RegisterEventHandler(s, func(_ context.Context, _ dap.InitializedEvent) {
					initialized <- struct{}{}
				})
				dap.RegisterEventHandler(s, func(_ context.Context, ev dap.OutputEvent) {
					output <- ev.Output
				})
				dap.RegisterEventHandler(s, func(_ context.Context, _ dap.TerminatedEvent) {
					terminated <- struct{}{}
				})
			}

			opts := append(adapterOptions("--stdio", "--codec", codec), dap.WithCodec(codec))

			err := dap.WithAdapter(ctx, configure, func(s *dap.Session) error {
				initResp, err := dap.Send[dap.InitializeResponse](s, dap.InitializeRequest{
					ClientName: "integration",
					AdapterID:  "echo",
				}).Wait(ctx)
				require.NoError(t, err)
				require.False(t, initResp.IsError())
				require.True(t, initResp.Response.SupportsConfigurationDoneRequest)

				waitFor(t, ctx, initialized)

				bps, err := dap.Send[dap.SetBreakpointsResponse](s, dap.SetBreakpointsRequest{
					Source:      dap.Source{Path: "/tmp/main.go"},
					Breakpoints: []dap.SourceBreakpoint{{Line: 10}, {Line: 20}},
				}).Wait(ctx)
				require.NoError(t, err)
				require.Len(t, bps.Response.Breakpoints, 2)
				require.NotEqual(t, *bps.Response.Breakpoints[0].ID, *bps.Response.Breakpoints[1].ID)

				eval, err := dap.Send[EvaluateResponse](s, EvaluateRequest{Expression: "x + 1"}).Wait(ctx)
				require.NoError(t, err)
				require.Equal(t, "x + 1", eval.Response.Result)
				require.Equal(t, "evaluated x + 1\n", waitFor(t, ctx, output))

				failed, err := dap.Send[EvaluateResponse](s, EvaluateRequest{}).Wait(ctx)
				require.NoError(t, err)
				require.True(t, failed.IsError())
				require.Equal(t, "empty expression", failed.Err.Message)

				disc, err := dap.Send[DisconnectResponse](s, DisconnectRequest{}).Wait(ctx)
				require.NoError(t, err)
				require.False(t, disc.IsError())

				waitFor(t, ctx, terminated)

				return nil
			}, opts...)
			if err != nil {
				skipIfAdapterNotInstalled(t, err)
			}

			require.NoError(t, err)
		})
	}
}

// TestStdio_AdapterExitEndsSession tests that the session's dispatch loop
// ends once the adapter closes the conversation.
func TestStdio_AdapterExitEndsSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adapter, err := dap.LaunchAdapter(ctx, adapterOptions("--stdio")...)
	if err != nil {
		skipIfAdapterNotInstalled(t, err)
		t.Fatalf("launch failed: %v", err)
	}

	defer adapter.Close()

	s, err := dap.NewSession()
	require.NoError(t, err)

	defer s.Close()

	require.NoError(t, s.BindAdapter(adapter))

	_, err = dap.Send[DisconnectResponse](s, DisconnectRequest{}).Wait(ctx)
	require.NoError(t, err)

	waitFor(t, ctx, s.Done())
	require.NoError(t, adapter.Wait())
}
