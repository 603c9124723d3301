package dto

// TwilioInboundForm is the form-encoded payload Twilio posts for an
// inbound WhatsApp message. Fields beyond these are ignored.
type TwilioInboundForm struct {
	From       string `form:"From"`
	To         string `form:"To"`
	Body       string `form:"Body"`
	MessageSid string `form:"MessageSid"`
	AccountSid string `form:"AccountSid"`
	NumMedia   string `form:"NumMedia"`
	MediaURL0  string `form:"MediaUrl0"`
	WaID       string `form:"WaId"`
}
