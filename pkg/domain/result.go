package domain

// Result is the outcome document for exactly one processed command.
//
// The result document is overwrite-only: agents that need history must read
// a result before sending the next command. The invariant
// "success implies error == null, failure implies result == null" holds by
// construction when results are built through OK and Fail.
type Result struct {
	ID      int64   `json:"id"`
	Success bool    `json:"success"`
	Result  any     `json:"result"`
	Error   *string `json:"error"`
}

// OK builds a success result carrying the handler payload.
func OK(id int64, payload any) *Result {
	return &Result{ID: id, Success: true, Result: payload}
}

// Fail builds a failure result carrying the error message.
func Fail(id int64, message string) *Result {
	return &Result{ID: id, Success: false, Error: &message}
}

// ErrorMessage returns the error text, or "" for success results.
func (r *Result) ErrorMessage() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return *r.Error
}
