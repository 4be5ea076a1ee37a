package messaging

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func signedRequest(t *testing.T, authToken, webhookURL string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, webhookURL, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", computeSignature(buildSignaturePayload(webhookURL, form), authToken))
	return req
}

func TestValidateTwilioSignature(t *testing.T) {
	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", "+919876543210")
	form.Set("Body", "Hello")

	req := signedRequest(t, "test_token", "https://example.com/webhook", form)
	if !ValidateTwilioSignature(req, "test_token", "https://example.com/webhook") {
		t.Error("expected signature validation to pass")
	}
}

func TestValidateTwilioSignature_InvalidSignature(t *testing.T) {
	form := url.Values{}
	form.Set("MessageSid", "SM123")

	req := httptest.NewRequest(http.MethodPost, "https://example.com/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", "invalid_signature")

	if ValidateTwilioSignature(req, "test_token", "https://example.com/webhook") {
		t.Error("expected signature validation to fail")
	}
}

func TestValidateTwilioSignature_MissingSignature(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "https://example.com/webhook", strings.NewReader("MessageSid=SM1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if ValidateTwilioSignature(req, "test_token", "https://example.com/webhook") {
		t.Error("expected validation to fail without signature")
	}
}

func TestBuildSignaturePayload_SortsKeys(t *testing.T) {
	form := url.Values{}
	form.Set("To", "+1")
	form.Set("Body", "hi")
	form.Set("From", "+2")

	got := buildSignaturePayload("https://x.test/h", form)
	if got != "https://x.test/hBodyhiFrom+2To+1" {
		t.Errorf("unexpected payload %q", got)
	}
}

func TestParseTwilioWebhook(t *testing.T) {
	form := url.Values{}
	form.Set("MessageSid", "SM1")
	form.Set("From", "+919876543210")
	form.Set("To", "+14155550100")
	form.Set("Body", "hi")
	form.Set("NumMedia", "1")
	form.Set("MediaUrl0", "https://media.example.com/1.jpg")
	form.Set("MediaContentType0", "image/jpeg")

	req := httptest.NewRequest(http.MethodPost, "/messaging/twilio/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := ParseTwilioWebhook(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MessageSid != "SM1" || got.Body != "hi" || got.NumMedia != 1 {
		t.Errorf("unexpected webhook %+v", got)
	}
	if got.MediaURLs[0] != "https://media.example.com/1.jpg" || got.MediaTypes[0] != "image/jpeg" {
		t.Errorf("unexpected media %v %v", got.MediaURLs, got.MediaTypes)
	}
}

func TestParseTwilioWebhook_BadNumMedia(t *testing.T) {
	for _, raw := range []string{"many", "-1", "11", "2000000"} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("NumMedia="+raw))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		got, err := ParseTwilioWebhook(req)
		if err == nil {
			t.Errorf("NumMedia=%s: expected error, got %d media urls", raw, len(got.MediaURLs))
		}
	}
}

func TestParseTwilioWebhook_MaxNumMedia(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("NumMedia=10"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := ParseTwilioWebhook(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.MediaURLs) != 10 {
		t.Errorf("expected 10 media slots, got %d", len(got.MediaURLs))
	}
}

func TestTwiML(t *testing.T) {
	got := string(TwiML("Plot & shop <now>"))
	if !strings.Contains(got, "<Response><Message>Plot &amp; shop &lt;now&gt;</Message></Response>") {
		t.Errorf("unexpected twiml %q", got)
	}
	if !strings.HasPrefix(got, "<?xml") {
		t.Errorf("expected xml header, got %q", got)
	}

	empty := string(TwiML("  "))
	if !strings.HasSuffix(empty, "<Response></Response>") {
		t.Errorf("expected empty response, got %q", empty)
	}
}

func TestBuildAbsoluteURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://internal.example.com/hook?x=1", nil)
	if got := buildAbsoluteURL(req, "https://public.example.com/api/"); got != "https://public.example.com/api/hook?x=1" {
		t.Fatalf("unexpected absolute url %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Host = "internal.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "forward.example.com")
	if got := buildAbsoluteURL(req, ""); got != "https://forward.example.com/hook" {
		t.Fatalf("unexpected forwarded url %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Host = "internal.example.com"
	req.TLS = &tls.ConnectionState{}
	if got := buildAbsoluteURL(req, ""); got != "https://internal.example.com/hook" {
		t.Fatalf("unexpected tls url %q", got)
	}
}

func TestNormalizeE164(t *testing.T) {
	if got := NormalizeE164(" +91 98765-43210 "); got != "+919876543210" {
		t.Fatalf("unexpected normalized phone %q", got)
	}
	if got := NormalizeE164("abc"); got != "" {
		t.Fatalf("expected empty for no digits, got %q", got)
	}
}

func TestUserIDForPhone(t *testing.T) {
	id := UserIDForPhone("+91 98765 43210")
	if id != "sms:919876543210" {
		t.Fatalf("unexpected user id %q", id)
	}
	phone, ok := PhoneForUserID(id)
	if !ok || phone != "+919876543210" {
		t.Fatalf("unexpected phone %q ok=%v", phone, ok)
	}
	if _, ok := PhoneForUserID("web:abc"); ok {
		t.Fatal("expected web user to be unreachable by sms")
	}
	if UserIDForPhone("") != "" {
		t.Fatal("expected empty id for empty phone")
	}
}
