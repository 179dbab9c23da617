package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// AskResponse is the payload of a successfully answered question.
type AskResponse struct {
	Success           bool             `json:"success"`
	Question          string           `json:"question"`
	SQLQuery          string           `json:"sql_query"`
	Explanation       string           `json:"explanation"`
	Results           []map[string]any `json:"results"`
	FormattedResponse string           `json:"formatted_response"`
}

// AskFailure is returned whenever a question could not be answered.
type AskFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
