package dap

// Standard Debug Adapter Protocol messages used by most sessions. They
// implement Request, Response and Event the same way application types do.

// Source describes a source file.
type Source struct {
	Name            string `json:"name,omitempty"`
	Path            string `json:"path,omitempty"`
	SourceReference *int   `json:"sourceReference,omitempty"`
}

// SourceBreakpoint is a breakpoint requested by the client.
type SourceBreakpoint struct {
	Line         int    `json:"line"`
	Column       *int   `json:"column,omitempty"`
	Condition    string `json:"condition,omitempty"`
	HitCondition string `json:"hitCondition,omitempty"`
	LogMessage   string `json:"logMessage,omitempty"`
}

// Breakpoint is a breakpoint as installed by the adapter.
type Breakpoint struct {
	ID       *int    `json:"id,omitempty"`
	Verified bool    `json:"verified"`
	Message  string  `json:"message,omitempty"`
	Source   *Source `json:"source,omitempty"`
	Line     *int    `json:"line,omitempty"`
	Column   *int    `json:"column,omitempty"`
}

// Capabilities lists optional features an adapter supports.
type Capabilities struct {
	SupportsConfigurationDoneRequest  bool `json:"supportsConfigurationDoneRequest,omitempty"`
	SupportsFunctionBreakpoints       bool `json:"supportsFunctionBreakpoints,omitempty"`
	SupportsConditionalBreakpoints    bool `json:"supportsConditionalBreakpoints,omitempty"`
	SupportsHitConditionalBreakpoints bool `json:"supportsHitConditionalBreakpoints,omitempty"`
	SupportsEvaluateForHovers         bool `json:"supportsEvaluateForHovers,omitempty"`
	SupportsLogPoints                 bool `json:"supportsLogPoints,omitempty"`
	SupportsTerminateRequest          bool `json:"supportsTerminateRequest,omitempty"`
}

// InitializeRequest is the first request a client sends.
type InitializeRequest struct {
	ClientID        string `json:"clientID,omitempty"`
	ClientName      string `json:"clientName,omitempty"`
	AdapterID       string `json:"adapterID"`
	Locale          string `json:"locale,omitempty"`
	LinesStartAt1   *bool  `json:"linesStartAt1,omitempty"`
	ColumnsStartAt1 *bool  `json:"columnsStartAt1,omitempty"`
	PathFormat      string `json:"pathFormat,omitempty"`
}

// Command implements Request.
func (InitializeRequest) Command() string { return "initialize" }

// InitializeResponse carries the adapter's capabilities.
type InitializeResponse struct {
	Capabilities
}

// Command implements Response.
func (InitializeResponse) Command() string { return "initialize" }

// SetBreakpointsRequest replaces all breakpoints in a source.
type SetBreakpointsRequest struct {
	Source         Source             `json:"source"`
	Breakpoints    []SourceBreakpoint `json:"breakpoints,omitempty"`
	SourceModified bool               `json:"sourceModified,omitempty"`
}

// Command implements Request.
func (SetBreakpointsRequest) Command() string { return "setBreakpoints" }

// SetBreakpointsResponse reports the installed breakpoints, in request order.
type SetBreakpointsResponse struct {
	Breakpoints []Breakpoint `json:"breakpoints"`
}

// Command implements Response.
func (SetBreakpointsResponse) Command() string { return "setBreakpoints" }

// InitializedEvent tells the client the adapter is ready for configuration.
type InitializedEvent struct{}

// EventName implements Event.
func (InitializedEvent) EventName() string { return "initialized" }

// OutputEvent carries program or adapter output.
type OutputEvent struct {
	Category string `json:"category,omitempty"`
	Output   string `json:"output"`
}

// EventName implements Event.
func (OutputEvent) EventName() string { return "output" }

// StoppedEvent reports that execution stopped.
type StoppedEvent struct {
	Reason            string `json:"reason"`
	Description       string `json:"description,omitempty"`
	ThreadID          *int   `json:"threadId,omitempty"`
	AllThreadsStopped bool   `json:"allThreadsStopped,omitempty"`
}

// EventName implements Event.
func (StoppedEvent) EventName() string { return "stopped" }

// TerminatedEvent reports that debugging has ended.
type TerminatedEvent struct {
	Restart any `json:"restart,omitempty"`
}

// EventName implements Event.
func (TerminatedEvent) EventName() string { return "terminated" }
