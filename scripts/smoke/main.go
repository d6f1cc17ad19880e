// Command smoke exercises a running time clock API instance end to end:
// health, login, a kiosk punch and the report endpoints. It exits non-zero
// when any critical check fails, so it can gate deployments.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type check struct {
	Name     string
	Method   string
	Path     string
	Body     interface{}
	Auth     bool
	Expect   int
	Critical bool
}

type result struct {
	Check    check
	Status   int
	Duration time.Duration
	Error    error
}

func main() {
	var (
		base     string
		email    string
		password string
		pin      string
		timeout  time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&email, "email", "", "Back-office login email (skips authed checks when empty)")
	flag.StringVar(&password, "password", "", "Back-office login password")
	flag.StringVar(&pin, "pin", "", "Staff PIN for the punch check (skipped when empty)")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	token := ""
	if email != "" {
		var err error
		token, err = login(client, base, email, password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	today := time.Now().Format("2006-01-02")
	weekAgo := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	window := fmt.Sprintf("start_date=%s&end_date=%s", weekAgo, today)

	checks := []check{
		{Name: "health", Method: http.MethodGet, Path: "/health", Expect: http.StatusOK, Critical: true},
		{Name: "ready", Method: http.MethodGet, Path: "/ready", Expect: http.StatusOK, Critical: true},
		{Name: "metrics", Method: http.MethodGet, Path: "/metrics", Expect: http.StatusOK},
	}
	if pin != "" {
		checks = append(checks, check{
			Name:     "punch",
			Method:   http.MethodPost,
			Path:     "/api/v1/time-clock/punch",
			Body:     map[string]interface{}{"pin": pin, "photo_captured": false},
			Expect:   http.StatusCreated,
			Critical: true,
		})
	}
	if token != "" {
		checks = append(checks,
			check{Name: "entries", Method: http.MethodGet, Path: "/api/v1/time-clock/entries?" + window, Auth: true, Expect: http.StatusOK, Critical: true},
			check{Name: "shift report", Method: http.MethodGet, Path: "/api/v1/time-clock/report/shifts?" + window, Auth: true, Expect: http.StatusOK, Critical: true},
			check{Name: "analytics report", Method: http.MethodGet, Path: "/api/v1/time-clock/report/analytics?" + window, Auth: true, Expect: http.StatusOK},
			check{Name: "staff list", Method: http.MethodGet, Path: "/api/v1/staff", Auth: true, Expect: http.StatusOK},
		)
	}

	failures := 0
	for _, c := range checks {
		res := run(client, base, token, c)
		printResult(res)
		if (res.Error != nil || res.Status != c.Expect) && c.Critical {
			failures++
		}
	}

	if failures > 0 {
		fmt.Printf("%d critical check(s) failed\n", failures)
		os.Exit(1)
	}
	fmt.Println("all critical checks passed")
}

func login(client *http.Client, base, email, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	resp, err := client.Post(strings.TrimRight(base, "/")+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if envelope.Data.AccessToken == "" {
		return "", fmt.Errorf("login response without token")
	}
	return envelope.Data.AccessToken, nil
}

func run(client *http.Client, base, token string, c check) result {
	res := result{Check: c}

	var body io.Reader
	if c.Body != nil {
		payload, err := json.Marshal(c.Body)
		if err != nil {
			res.Error = err
			return res
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(c.Method, strings.TrimRight(base, "/")+c.Path, body)
	if err != nil {
		res.Error = err
		return res
	}
	if c.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Auth && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.Status = resp.StatusCode
	return res
}

func printResult(res result) {
	status := "ok"
	if res.Error != nil {
		status = "error: " + res.Error.Error()
	} else if res.Status != res.Check.Expect {
		status = fmt.Sprintf("got %d, want %d", res.Status, res.Check.Expect)
	}
	fmt.Printf("%-18s %-6s %-55s %8s  %s\n",
		res.Check.Name, res.Check.Method, res.Check.Path, res.Duration.Round(time.Millisecond), status)
}
