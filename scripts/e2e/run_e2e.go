// Package main runs end-to-end scenarios against a running concierge API.
//
// Scenarios cover:
//   - English booking over the JSON endpoint
//   - Marathi booking over the JSON endpoint
//   - Restart keyword mid-flow
//   - Signed Twilio webhook round trip
//
// Usage:
//
//	API_BASE_URL=... go run ./scripts/e2e                  # runs all
//	API_BASE_URL=... go run ./scripts/e2e english-booking  # runs one
//
// ADMIN_JWT_SECRET enables session checks through the admin API and
// TWILIO_AUTH_TOKEN enables the webhook scenario.
package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	httpmiddleware "github.com/wolfman30/realestate-concierge/internal/http/middleware"
)

var (
	apiBase     string
	adminToken  string
	twilioToken string
	client      = &http.Client{Timeout: 20 * time.Second}
)

// bookingScript walks a user from the language menu to a confirmed visit
// with the demo catalog. The first entry picks the language.
var bookingScript = []string{"1", "1", "1", "1", "Asha Patil", "9876543210", "tomorrow 11am", "1"}

func withLanguage(choice string) []string {
	out := append([]string{}, bookingScript...)
	out[0] = choice
	return out
}

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed int
	failed int
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...any) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

type reply struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	State   string `json:"state"`
}

func send(userID, text string) (*reply, error) {
	body, _ := json.Marshal(map[string]string{"user_id": userID, "text": text})
	resp, err := client.Post(apiBase+"/conversations/message", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var out reply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func converse(t *T, userID string, msgs ...string) *reply {
	var last *reply
	for _, m := range msgs {
		r, err := send(userID, m)
		if err != nil {
			t.fatalf("send %q: %v", m, err)
			return nil
		}
		fmt.Printf("    > %s\n    < [%s] %s\n", m, r.State, firstLine(r.Message))
		last = r
	}
	return last
}

// sessionState asks the admin API for the stored state; empty when the
// admin API is not reachable.
func sessionState(userID string) string {
	if adminToken == "" {
		return ""
	}
	req, _ := http.NewRequest(http.MethodGet, apiBase+"/admin/sessions/"+url.PathEscape(userID), nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	var sess struct {
		Phase struct {
			State string `json:"state"`
		} `json:"phase"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return ""
	}
	return sess.Phase.State
}

func uniqueUser(prefix string) string {
	return fmt.Sprintf("%s:e2e-%d", prefix, time.Now().UnixNano())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func scenarioEnglishBooking(t *T) {
	user := uniqueUser("web")
	last := converse(t, user, append([]string{"hi"}, withLanguage("1")...)...)
	if last == nil {
		return
	}
	t.check("reaches Completed", last.State == "Completed")
	t.check("confirmation sent", strings.Contains(last.Message, "booked"))
	if state := sessionState(user); state != "" {
		t.check("admin API reports Completed", state == "Completed")
	}
}

func scenarioMarathiBooking(t *T) {
	user := uniqueUser("web")
	last := converse(t, user, append([]string{"नमस्कार"}, withLanguage("2")...)...)
	if last == nil {
		return
	}
	t.check("reaches Completed", last.State == "Completed")
	t.check("reply is in Devanagari", strings.ContainsAny(last.Message, "अआइईउऊएओकखगघचजटडतदनपबमयरलवशसह"))
}

func scenarioRestart(t *T) {
	user := uniqueUser("web")
	mid := converse(t, user, "hi", "1", "1")
	if mid == nil {
		return
	}
	t.check("moved past the first menu", mid.State != "LanguageSelection" && mid.State != "Welcome")
	last := converse(t, user, "restart")
	if last == nil {
		return
	}
	t.check("restart returns to the welcome menu", last.State == "Welcome")
}

func scenarioTwilioWebhook(t *T) {
	if twilioToken == "" {
		fmt.Println("    SKIP: TWILIO_AUTH_TOKEN not set")
		return
	}
	endpoint := apiBase + "/messaging/twilio/webhook"
	form := url.Values{
		"MessageSid": {fmt.Sprintf("SM%d", time.Now().UnixNano())},
		"AccountSid": {"ACe2e"},
		"From":       {"+919800000001"},
		"To":         {"+912000000000"},
		"Body":       {"hi"},
		"NumMedia":   {"0"},
	}
	req, _ := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", twilioSignature(twilioToken, endpoint, form))

	resp, err := client.Do(req)
	if err != nil {
		t.fatalf("webhook: %v", err)
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	t.check("webhook accepted", resp.StatusCode == http.StatusOK)
	t.check("TwiML returned", strings.Contains(string(body), "<Response>"))

	// Replaying the same MessageSid must not start a second turn.
	req2, _ := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	req2.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req2.Header.Set("X-Twilio-Signature", twilioSignature(twilioToken, endpoint, form))
	resp2, err := client.Do(req2)
	if err != nil {
		t.fatalf("replay: %v", err)
		return
	}
	resp2.Body.Close()
	t.check("replay acknowledged", resp2.StatusCode == http.StatusOK)
}

func twilioSignature(token, endpoint string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(endpoint)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(form.Get(k))
	}
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func main() {
	apiBase = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBase == "" {
		fmt.Fprintln(os.Stderr, "ERROR: API_BASE_URL required")
		os.Exit(1)
	}
	if secret := os.Getenv("ADMIN_JWT_SECRET"); secret != "" {
		token, err := httpmiddleware.IssueAdminToken(secret, "e2e", 10*time.Minute)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: issue admin token: %v\n", err)
			os.Exit(1)
		}
		adminToken = token
	}
	twilioToken = os.Getenv("TWILIO_AUTH_TOKEN")

	scenarios := []scenario{
		{"english-booking", scenarioEnglishBooking},
		{"marathi-booking", scenarioMarathiBooking},
		{"restart", scenarioRestart},
		{"twilio-webhook", scenarioTwilioWebhook},
	}

	filter := ""
	if len(os.Args) > 1 {
		filter = os.Args[1]
	}

	totalPassed, totalFailed := 0, 0
	var results []string
	for _, s := range scenarios {
		if filter != "" && s.Name != filter {
			continue
		}
		fmt.Printf("\n========================================\n")
		fmt.Printf("SCENARIO: %s\n", s.Name)
		fmt.Printf("========================================\n")

		t := &T{}
		s.Fn(t)
		totalPassed += t.passed
		totalFailed += t.failed

		status := "ok  "
		if t.failed > 0 {
			status = "FAIL"
		}
		results = append(results, fmt.Sprintf("  %s %s (%d passed, %d failed)", status, s.Name, t.passed, t.failed))
	}

	fmt.Printf("\n========================================\n")
	fmt.Println("SUMMARY")
	fmt.Printf("========================================\n")
	for _, r := range results {
		fmt.Println(r)
	}
	fmt.Printf("\nTotal: %d passed, %d failed\n", totalPassed, totalFailed)
	if totalFailed > 0 {
		os.Exit(1)
	}
}
