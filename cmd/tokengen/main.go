// Package main provides a CLI tool for generating admin bearer tokens for the
// certledger admin API. Without -key it signs with JWT_SIGNING_KEY or the
// development key, which must not be used in production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"certledger/internal/issuer"
	jwttoken "certledger/internal/jwt_token"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTokenTTL = time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)
	adminAddress := adminCmd.String("address", "", "Admin ledger address (required, must be a trusted issuer)")
	adminTTL := adminCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	adminKey := adminCmd.String("key", "", "Signing key. Defaults to JWT_SIGNING_KEY, then the dev key.")
	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "admin":
		_ = adminCmd.Parse(os.Args[2:])
		generateAdminToken(*adminAddress, *adminKey, *adminTTL, *adminJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate admin tokens for the certledger API

WARNING: Without -key or JWT_SIGNING_KEY the dev signing key is used. Those
         tokens only work against servers running with the dev key.

Usage:
  tokengen <command> [flags]

Commands:
  admin     Generate an admin bearer token (JWT)

Examples:
  # Token for an issuer address, valid one hour
  tokengen admin -address 0x0000...00ad

  # Longer lived token as JSON
  tokengen admin -address 0x0000...00ad -ttl 8h -json

Use "tokengen <command> -h" for more information about a command.`)
}

func signingKey(flagKey string) (string, string) {
	if flagKey != "" {
		return flagKey, "flag"
	}
	_ = godotenv.Load()
	if env := strings.TrimSpace(os.Getenv("JWT_SIGNING_KEY")); env != "" {
		return env, "env"
	}
	return devSigningKey, "dev"
}

func generateAdminToken(address, flagKey string, ttl time.Duration, jsonOutput bool) {
	address = issuer.Normalize(address)
	if address == "" {
		fmt.Fprintln(os.Stderr, "Error: -address is required")
		os.Exit(1)
	}
	key, keyType := signingKey(flagKey)

	svc := jwttoken.NewJWTService(key, jwttoken.DefaultIssuer, jwttoken.DefaultAudience)
	token, err := svc.GenerateAdminToken(address, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Type:      "admin_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub": address,
				"iss": jwttoken.DefaultIssuer,
				"aud": jwttoken.DefaultAudience,
			},
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Println("Admin Token (JWT)")
	fmt.Println("=================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("Admin:       %s\n", address)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/admin/requests")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
