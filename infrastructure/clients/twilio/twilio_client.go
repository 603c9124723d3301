package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agent-hub/domain/model"
	"agent-hub/domain/repository"
	"agent-hub/infrastructure/configuration"
	"agent-hub/infrastructure/logger"
)

const apiBase = "https://api.twilio.com/2010-04-01"

// numberTypes are tried in order until a search returns results. Many
// countries only sell Mobile or National numbers, so Local alone would
// come back empty there.
var numberTypes = []string{"Local", "Mobile", "National"}

type availableNumbersResponse struct {
	AvailablePhoneNumbers []struct {
		PhoneNumber  string `json:"phone_number"`
		FriendlyName string `json:"friendly_name"`
		Locality     string `json:"locality"`
		Region       string `json:"region"`
		IsoCountry   string `json:"iso_country"`
		PostalCode   string `json:"postal_code"`
		Capabilities struct {
			Voice bool `json:"voice"`
			SMS   bool `json:"SMS"`
			MMS   bool `json:"MMS"`
		} `json:"capabilities"`
	} `json:"available_phone_numbers"`
}

type incomingPhoneNumberResponse struct {
	SID         string `json:"sid"`
	PhoneNumber string `json:"phone_number"`
}

// Client provisions WhatsApp-capable numbers through the Twilio REST API.
type Client struct {
	httpClient *http.Client
	accountSID string
	authToken  string
	webhookURL string
}

func NewTwilioClient() repository.ITwilioProvisioner {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		accountSID: configuration.C.Twilio.AccountSID,
		authToken:  configuration.C.Twilio.AuthToken,
		webhookURL: configuration.C.Twilio.WhatsAppWebhookURL,
	}
}

// SearchNumbers lists purchasable SMS-capable numbers in a country,
// falling back through number types until one yields results. The type
// that produced the results is returned alongside them.
func (c *Client) SearchNumbers(ctx context.Context, country string, limit int) ([]model.AvailableNumber, string, error) {
	if c.accountSID == "" || c.authToken == "" {
		return nil, "", fmt.Errorf("twilio credentials are not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	country = strings.ToUpper(country)

	for _, numberType := range numberTypes {
		endpoint := fmt.Sprintf("%s/Accounts/%s/AvailablePhoneNumbers/%s/%s.json?SmsEnabled=true&PageSize=%d",
			apiBase, c.accountSID, country, numberType, limit)

		var parsed availableNumbersResponse
		if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
			logger.GetLogger().WithField("error", err).WithField("type", numberType).Warn("Twilio number search failed")
			continue
		}
		if len(parsed.AvailablePhoneNumbers) == 0 {
			continue
		}

		numbers := make([]model.AvailableNumber, 0, len(parsed.AvailablePhoneNumbers))
		for _, n := range parsed.AvailablePhoneNumbers {
			num := model.AvailableNumber{
				PhoneNumber:  n.PhoneNumber,
				FriendlyName: n.FriendlyName,
				Locality:     n.Locality,
				Region:       n.Region,
				Country:      n.IsoCountry,
				PostalCode:   n.PostalCode,
				NumberType:   strings.ToLower(numberType),
			}
			num.Capabilities.Voice = n.Capabilities.Voice
			num.Capabilities.SMS = n.Capabilities.SMS
			num.Capabilities.MMS = n.Capabilities.MMS
			numbers = append(numbers, num)
		}
		return numbers, strings.ToLower(numberType), nil
	}

	return []model.AvailableNumber{}, "", nil
}

// PurchaseNumber buys the number and points its inbound message webhook
// at this service.
func (c *Client) PurchaseNumber(ctx context.Context, phoneNumber string) (*model.PurchasedNumber, error) {
	if c.accountSID == "" || c.authToken == "" {
		return nil, fmt.Errorf("twilio credentials are not configured")
	}

	form := url.Values{}
	form.Set("PhoneNumber", phoneNumber)
	form.Set("SmsUrl", c.webhookURL)
	form.Set("SmsMethod", http.MethodPost)
	form.Set("VoiceUrl", c.webhookURL)

	endpoint := fmt.Sprintf("%s/Accounts/%s/IncomingPhoneNumbers.json", apiBase, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, string(snippet))
	}

	var purchased incomingPhoneNumberResponse
	if err := json.NewDecoder(resp.Body).Decode(&purchased); err != nil {
		return nil, fmt.Errorf("failed to decode purchase response: %w", err)
	}

	logger.GetLogger().WithField("phone_number", purchased.PhoneNumber).Info("Purchased Twilio number")
	return &model.PurchasedNumber{
		PhoneNumber: purchased.PhoneNumber,
		SID:         purchased.SID,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
