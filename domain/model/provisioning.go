package model

// AvailableNumber is one purchasable phone number returned by a search.
type AvailableNumber struct {
	PhoneNumber  string `json:"phone_number"`
	FriendlyName string `json:"friendly_name"`
	Locality     string `json:"locality,omitempty"`
	Region       string `json:"region,omitempty"`
	Country      string `json:"country"`
	PostalCode   string `json:"postal_code,omitempty"`
	NumberType   string `json:"number_type"`
	Capabilities struct {
		Voice bool `json:"voice"`
		SMS   bool `json:"sms"`
		MMS   bool `json:"mms"`
	} `json:"capabilities"`
}

// PurchasedNumber is the provider's record of a bought number.
type PurchasedNumber struct {
	PhoneNumber string `json:"phone_number"`
	SID         string `json:"sid"`
}

// Country is a supported provisioning country.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// ProvisioningCountries are the markets offered in the dashboard picker.
var ProvisioningCountries = []Country{
	{Code: "US", Name: "United States", Flag: "\U0001F1FA\U0001F1F8"},
	{Code: "CA", Name: "Canada", Flag: "\U0001F1E8\U0001F1E6"},
	{Code: "GB", Name: "United Kingdom", Flag: "\U0001F1EC\U0001F1E7"},
	{Code: "DE", Name: "Germany", Flag: "\U0001F1E9\U0001F1EA"},
	{Code: "FR", Name: "France", Flag: "\U0001F1EB\U0001F1F7"},
	{Code: "ES", Name: "Spain", Flag: "\U0001F1EA\U0001F1F8"},
	{Code: "IT", Name: "Italy", Flag: "\U0001F1EE\U0001F1F9"},
	{Code: "NL", Name: "Netherlands", Flag: "\U0001F1F3\U0001F1F1"},
	{Code: "AU", Name: "Australia", Flag: "\U0001F1E6\U0001F1FA"},
	{Code: "BR", Name: "Brazil", Flag: "\U0001F1E7\U0001F1F7"},
	{Code: "MX", Name: "Mexico", Flag: "\U0001F1F2\U0001F1FD"},
	{Code: "IN", Name: "India", Flag: "\U0001F1EE\U0001F1F3"},
}
