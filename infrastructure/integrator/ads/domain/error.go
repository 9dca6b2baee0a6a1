package adsdomain

// ErrorResponse representa o corpo de erro da API de anúncios
type ErrorResponse struct {
	Code      string `json:"code"`
	Details   string `json:"details"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

func (e ErrorResponse) Text() string {
	switch {
	case e.Details != "":
		return e.Details
	case e.Message != "":
		return e.Message
	default:
		return e.Code
	}
}
