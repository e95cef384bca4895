package checks

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testSMSConfig(baseURL string) SMSConfig {
	config := DefaultSMSConfig("AC123", "token", "+15550001111")
	config.BaseURL = baseURL
	return config
}

func TestSendSMS(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		r.ParseForm()
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := SendSMS(testSMSConfig(srv.URL), "+15552223333", "build green")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotUser != "AC123" || gotPass != "token" {
		t.Errorf("unexpected basic auth: %s/%s", gotUser, gotPass)
	}
	if gotTo != "+15552223333" || gotFrom != "+15550001111" || gotBody != "build green" {
		t.Errorf("unexpected form: to=%s from=%s body=%s", gotTo, gotFrom, gotBody)
	}
}

func TestSendSMSHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if err := SendSMS(testSMSConfig(srv.URL), "+15552223333", "hi"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestSendSMSValidation(t *testing.T) {
	config := testSMSConfig("http://unused")
	config.AuthToken = ""
	if err := SendSMS(config, "+15552223333", "hi"); err == nil {
		t.Error("expected error for missing credentials")
	}

	if err := SendSMS(testSMSConfig("http://unused"), "", "hi"); err == nil {
		t.Error("expected error for missing destination")
	}
}
