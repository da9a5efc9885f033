package common

// Messages returned in envelopes.
const (
	MsgQuerySuccess     = "query executed successfully"
	MsgCreated          = "record created successfully"
	MsgUpdated          = "record updated successfully"
	MsgDeleted          = "record deleted successfully"
	MsgDataNotFound     = "data not found"
	MsgAlreadyExists    = "record already exists"
	MsgUnknownError     = "unknown error"
	MsgUnauthorized     = "unauthorized"
	MsgInvalidLogin     = "email or password invalid"
	MsgTooManyRequests  = "rate limit exceeded, please try again later"
	MsgLogoutSuccessful = "logout successful"
)

// Response is the uniform result envelope.
type Response[T any] struct {
	Error   bool     `json:"error"`
	Message []string `json:"message"`
	Data    T        `json:"data"`
}

// OK builds a success envelope.
func OK[T any](data T, msgs ...string) *Response[T] {
	if len(msgs) == 0 {
		msgs = []string{MsgQuerySuccess}
	}
	return &Response[T]{Message: msgs, Data: data}
}

// Failure builds an error envelope; data is always null.
func Failure(msgs ...string) *Response[any] {
	return &Response[any]{Error: true, Message: msgs}
}

// Page is a paginated result: one page of rows plus the total match count.
type Page[T any] struct {
	Rows  []*T `json:"rows"`
	Count int  `json:"count"`
}
