// smoke-report runs a login, dashboard and transactions round-trip against a
// live instance and checks the responses hang together. Intended for staging
// checks after a deploy.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type envelope struct {
	HTTPStatusCode int             `json:"http_status_code"`
	Message        string          `json:"message"`
	Data           json.RawMessage `json:"data"`
}

func main() {
	log.SetFlags(0)

	base := os.Getenv("PARTNERAPI_SMOKE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	usr := os.Getenv("PARTNERAPI_SMOKE_USER")
	pwd := os.Getenv("PARTNERAPI_SMOKE_PASSWORD")
	if usr == "" || pwd == "" {
		log.Fatal("set PARTNERAPI_SMOKE_USER and PARTNERAPI_SMOKE_PASSWORD")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	var login struct {
		Token        string `json:"token"`
		SessionToken string `json:"session_token"`
		UserDetails  struct {
			EmployeeName string `json:"employee_name"`
		} `json:"user_details"`
	}
	env := call(client, http.MethodPost, base+"/v1/auth/login", "",
		map[string]string{"usr": usr, "pwd": pwd})
	if env.HTTPStatusCode != http.StatusOK {
		log.Fatalf("login: %d %s", env.HTTPStatusCode, env.Message)
	}
	must(json.Unmarshal(env.Data, &login))
	if login.Token == "" || login.SessionToken == "" {
		log.Fatal("login succeeded but credentials are missing")
	}

	var dash struct {
		SalesPartner    string `json:"sales_partner"`
		AvailablePoints int64  `json:"available_points"`
		RecentTransactions []struct {
			TransactionID string `json:"transaction_id"`
			Type          string `json:"type"`
		} `json:"recent_transactions"`
	}
	env = call(client, http.MethodGet, base+"/v1/partner/dashboard", login.Token, nil)
	if env.HTTPStatusCode != http.StatusOK {
		log.Fatalf("dashboard: %d %s", env.HTTPStatusCode, env.Message)
	}
	must(json.Unmarshal(env.Data, &dash))
	if len(dash.RecentTransactions) > 10 {
		log.Fatalf("dashboard recent window too large: %d", len(dash.RecentTransactions))
	}

	var report struct {
		SalesPartner string `json:"sales_partner"`
		Transactions []struct {
			Amount int64  `json:"amount"`
			Type   string `json:"type"`
		} `json:"transactions"`
	}
	env = call(client, http.MethodPost, base+"/v1/partner/transactions", login.Token,
		map[string]any{"page": 1, "limit": 5})
	if env.HTTPStatusCode != http.StatusOK {
		log.Fatalf("transactions: %d %s", env.HTTPStatusCode, env.Message)
	}
	must(json.Unmarshal(env.Data, &report))
	if report.SalesPartner != dash.SalesPartner {
		log.Fatalf("partner mismatch: dashboard=%s transactions=%s", dash.SalesPartner, report.SalesPartner)
	}
	for _, tx := range report.Transactions {
		if tx.Type == "credit" && tx.Amount <= 0 {
			log.Fatalf("credit with non-positive amount: %+v", tx)
		}
		if tx.Type == "debit" && tx.Amount > 0 {
			log.Fatalf("debit with positive amount: %+v", tx)
		}
	}

	fmt.Printf("smoke report passed: partner=%s employee=%q points=%d\n",
		dash.SalesPartner, login.UserDetails.EmployeeName, dash.AvailablePoints)
}

func call(client *http.Client, method, url, authToken string, body any) envelope {
	var buf bytes.Buffer
	if body != nil {
		must(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	must(err)
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", authToken)
	}
	resp, err := client.Do(req)
	must(err)
	defer resp.Body.Close()

	var env envelope
	must(json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
