package dto

// Res is the generic API response envelope.
type Res struct {
	ResponseCode    string      `json:"response_code"`
	ResponseMessage string      `json:"response_message"`
	Data            interface{} `json:"data,omitempty"`
}

// Ok builds a success envelope around data.
func Ok(data interface{}) Res {
	return Res{ResponseCode: "200", ResponseMessage: "Success", Data: data}
}

// Err builds an error envelope.
func Err(code, message string) Res {
	return Res{ResponseCode: code, ResponseMessage: message}
}
