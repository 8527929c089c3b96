package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	config "github.com/njorogedev/estate_hub/configs"
)

const paystackBaseURL = "https://api.paystack.co"

type PaystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type PaystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// InitializePaystackTransaction opens a checkout session for the given
// reference. Amount is in the currency's subunit per the Paystack API.
func InitializePaystackTransaction(email string, amountSubunit int64, reference string) (*PaystackInitResponse, error) {
	payload := map[string]interface{}{
		"email":     email,
		"amount":    amountSubunit,
		"reference": reference,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal paystack payload: %v", err)
	}

	req, err := http.NewRequest("POST", paystackBaseURL+"/transaction/initialize", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+config.Config("PAYSTACK_SECRET_KEY"))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call paystack: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var initResp PaystackInitResponse
	if err := json.Unmarshal(respBody, &initResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paystack response: %v", err)
	}
	if !initResp.Status {
		return nil, fmt.Errorf("paystack initialization failed: %s", initResp.Message)
	}
	return &initResp, nil
}

// VerifyPaystackTransaction is the pull-style reconciliation call: given a
// reference, ask Paystack whether the charge settled.
func VerifyPaystackTransaction(reference string) (*PaystackVerifyResponse, error) {
	req, err := http.NewRequest("GET", paystackBaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+config.Config("PAYSTACK_SECRET_KEY"))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call paystack: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var verifyResp PaystackVerifyResponse
	if err := json.Unmarshal(respBody, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paystack response: %v", err)
	}
	return &verifyResp, nil
}

func (r *PaystackVerifyResponse) Succeeded() bool {
	return r.Status && r.Data.Status == "success"
}
