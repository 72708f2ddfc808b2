package llms

// TurnRole identifies which side of the conversation produced a turn.
type TurnRole string

const (
	TurnRoleUser  TurnRole = "user"
	TurnRoleAgent TurnRole = "agent"
)

// Turn is a single conversation turn as seen by a model backend.
//
// Agent turns may carry tool calls alongside (or instead of) content;
// backends expand those into whatever message shapes their wire format
// expects, including tool response messages when Response is set.
type Turn struct {
	Role      TurnRole
	Content   string
	Reasoning string
	ToolCalls []ToolCall
}

// ToolCall is a single structured call requested by the model, together
// with the response produced for it (when already resolved).
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
	Response  string
}

// Response is the accumulated outcome of a non-streamed prompt.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}
