package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/takapay/takapay/internal/domain"
	"github.com/takapay/takapay/internal/infrastructure/auth"
)

var (
	baseURL string
	timeout time.Duration
	userID  string
	role    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "takapay-cli",
		Short: "TakaPay CLI tool",
		Long:  `A command line interface for interacting with the TakaPay API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the TakaPay API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "Acting user ID (header identity)")
	rootCmd.PersistentFlags().StringVar(&role, "role", "member", "Acting user role (header identity)")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	replayCmd := &cobra.Command{
		Use:   "replay [account-id]",
		Short: "Replay an account's ledger and check consistency",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			replayAccount(args[0])
		},
	}

	ledgerCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Request commands
	requestsCmd := &cobra.Command{
		Use:   "requests",
		Short: "List money requests",
		Run: func(cmd *cobra.Command, args []string) {
			listRequests()
		},
	}
	rootCmd.AddCommand(requestsCmd)

	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func tokenCmd() *cobra.Command {
	var secret string
	var email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Generate a JWT for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := auth.NewJWTManager(secret, ttl)
			token, err := manager.Generate(&domain.User{
				ID:     args[0],
				Email:  email,
				Role:   domain.Role(role),
				Active: true,
			})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret")
	cmd.Flags().StringVar(&email, "email", "", "User email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func replayAccount(accountID string) {
	body, status, err := get("/api/v1/accounts/" + accountID + "/replay")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}

	if status != http.StatusOK {
		fmt.Printf("Replay FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if consistent, ok := result["consistent"].(bool); ok && consistent {
		fmt.Println("Ledger replay PASSED")
	} else {
		fmt.Println("Ledger replay FAILED")
	}
	printJSON(result)
}

func listRequests() {
	body, status, err := get("/api/v1/requests/")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}

	if status != http.StatusOK {
		fmt.Printf("Listing FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Requests []struct {
			ID          string `json:"id"`
			Provider    string `json:"provider"`
			Amount      string `json:"amount"`
			Status      string `json:"status"`
			Description string `json:"description"`
		} `json:"requests"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-28s %-8s %-12s %-10s %s\n", "ID", "PROVIDER", "AMOUNT", "STATUS", "DESCRIPTION")
	for _, r := range result.Requests {
		fmt.Printf("%-28s %-8s %-12s %-10s %s\n", r.ID, r.Provider, r.Amount, r.Status, truncate(r.Description, 40))
	}
	fmt.Printf("Total: %d\n", result.Total)
}

func get(path string) ([]byte, int, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", role)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
