package dap

import (
	"context"
	"fmt"
)

// WithAdapter manages an adapter session's lifecycle with automatic cleanup.
//
// It launches the adapter, creates a session from the same options, runs
// configure to register handlers, binds the session and calls fn. The
// session is closed and the adapter killed when fn returns. Close failures
// are logged and do not override fn's error.
//
// Example usage:
//
//	err := dap.WithAdapter(ctx, nil, func(s *dap.Session) error {
//	    resp := dap.Send[dap.InitializeResponse](s, dap.InitializeRequest{AdapterID: "go"}).Get()
//	    if resp.IsError() {
//	        return resp.Err
//	    }
//	    return nil
//	},
//	    dap.WithAdapterName("dlv"),
//	    dap.WithAdapterArgs("dap"),
//	    dap.WithLogger(log),
//	)
func WithAdapter(ctx context.Context, configure func(*Session), fn func(*Session) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options, err := applyOptions(opts)
	if err != nil {
		return err
	}

	log := options.Logger

	session, err := NewSession(opts...)
	if err != nil {
		return err
	}

	if configure != nil {
		configure(session)
	}

	adapter, err := LaunchAdapter(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to launch adapter: %w", err)
	}

	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			log.Warn("failed to close session", "error", closeErr)
		}

		if closeErr := adapter.Close(); closeErr != nil {
			log.Warn("failed to stop adapter", "error", closeErr)
		}

		_ = adapter.Wait()
	}()

	if err := session.BindAdapter(adapter); err != nil {
		return fmt.Errorf("failed to bind adapter: %w", err)
	}

	return fn(session)
}
