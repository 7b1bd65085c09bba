// Package main mints operator tokens signed with the server's JWT settings.
package main

import (
	"flag"
	"fmt"
	"os"

	jwttoken "github.com/Rafadormi/105-dirvigisan-perobal/internal/jwt_token"
	"github.com/Rafadormi/105-dirvigisan-perobal/internal/platform/config"
)

func main() {
	var operatorID string
	var name string
	var role string

	flag.StringVar(&operatorID, "operator", "", "operator id recorded as the actor of audited changes")
	flag.StringVar(&name, "name", "", "display name")
	flag.StringVar(&role, "role", jwttoken.RoleInspector, "inspector or supervisor")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	token, err := svc.GenerateOperatorToken(operatorID, name, role, cfg.Auth.TokenTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
