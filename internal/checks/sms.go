package checks

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// #region config

// SMSConfig holds Twilio credentials and the API endpoint. BaseURL is
// overridable for tests.
type SMSConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
}

// DefaultSMSConfig returns a config pointed at the Twilio API.
func DefaultSMSConfig(accountSID, authToken, fromNumber string) SMSConfig {
	return SMSConfig{
		AccountSID: accountSID,
		AuthToken:  authToken,
		FromNumber: fromNumber,
		BaseURL:    "https://api.twilio.com",
		Timeout:    30 * time.Second,
	}
}

// #endregion config

// #region send-sms

// SendSMS sends one message through the Twilio Messages endpoint.
func SendSMS(config SMSConfig, to, body string) error {
	if config.AccountSID == "" || config.AuthToken == "" {
		return fmt.Errorf("sms: missing credentials")
	}
	if to == "" {
		return fmt.Errorf("sms: missing destination number")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(config.BaseURL, "/"), config.AccountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", config.FromNumber)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.SetBasicAuth(config.AccountSID, config.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: config.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms: HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return nil
}

// #endregion send-sms
