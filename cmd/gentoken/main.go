// Command gentoken mints a signed bearer token for local development and
// testing. The service itself never issues credentials.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/auth"
	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/pkg/utils"
)

func main() {
	identity := flag.String("identity", "", "subject identity, e.g. alice@example.com")
	roleName := flag.String("role", "", "role claim: L0, L1, L2, L3 or admin")
	secret := flag.String("secret", os.Getenv("AUTH_SECRET"), "signing secret (defaults to AUTH_SECRET)")
	issuer := flag.String("issuer", "approval-workflow", "token issuer")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *identity == "" || *roleName == "" {
		fmt.Fprintln(os.Stderr, "usage: gentoken -identity <who> -role <role> [-secret <s>] [-issuer <i>] [-ttl <d>]")
		os.Exit(2)
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "gentoken: no signing secret (pass -secret or set AUTH_SECRET)")
		os.Exit(2)
	}
	if err := utils.ValidateEmail(*identity); err != nil {
		fmt.Fprintf(os.Stderr, "gentoken: %v\n", err)
		os.Exit(2)
	}

	role, ok := entity.ParseRole(*roleName)
	if !ok {
		fmt.Fprintf(os.Stderr, "gentoken: unknown role %q\n", *roleName)
		os.Exit(2)
	}

	authenticator := auth.NewAuthenticator(*secret, *issuer, zap.NewNop())
	token, err := authenticator.Sign(*identity, role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gentoken: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
