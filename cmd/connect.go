package cmd

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/etnz/expenses/truelayer"
	"github.com/google/subcommands"
)

// connectCmd holds the flags for the 'connect' subcommand.
type connectCmd struct {
	port    int
	timeout time.Duration
}

func (*connectCmd) Name() string     { return "connect" }
func (*connectCmd) Synopsis() string { return "authorize a new bank connection via TrueLayer" }
func (*connectCmd) Usage() string {
	return `exps connect [-port <port>] [-timeout <duration>]

  Prints a TrueLayer authorization link, waits for the bank's redirect on a
  local callback server and stores the resulting connection. Requires the
  TRUELAYER_CLIENT_ID and TRUELAYER_CLIENT_SECRET environment variables.
`
}

func (c *connectCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 3000, "Local port for the authorization callback. Must match the redirect URI registered with TrueLayer.")
	f.DurationVar(&c.timeout, "timeout", 5*time.Minute, "How long to wait for the authorization.")
}

// callbackResult is what the local callback server hands back: an
// authorization code, or the error the bank redirected with.
type callbackResult struct {
	code string
	err  error
}

func (c *connectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := openConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	client, err := truelayer.NewClient(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	redirectURI := fmt.Sprintf("http://localhost:%d/truelayer-callback", c.port)
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/truelayer-callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			http.Error(w, "Authorization failed: "+e, http.StatusBadRequest)
			select {
			case results <- callbackResult{err: fmt.Errorf("the bank refused the authorization: %s", e)}:
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code parameter", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this tab and return to the terminal.")
		select {
		case results <- callbackResult{code: code}:
		default:
		}
	})

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", c.port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot listen on port %d: %v\n", c.port, err)
		return subcommands.ExitFailure
	}
	server := &http.Server{Handler: mux}
	go server.Serve(listener)
	defer server.Close()

	fmt.Println("Open this link in your browser to authorize access to your bank:")
	fmt.Println()
	fmt.Printf("  %s\n", client.AuthURL(redirectURI))
	fmt.Println()
	fmt.Printf("Waiting for the redirect on %s ...\n", redirectURI)

	var code string
	select {
	case result := <-results:
		if result.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", result.err)
			return subcommands.ExitFailure
		}
		code = result.code
	case <-time.After(c.timeout):
		fmt.Fprintf(os.Stderr, "Error: timed out after %s waiting for the authorization.\n", c.timeout)
		return subcommands.ExitFailure
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "Error: %v\n", ctx.Err())
		return subcommands.ExitFailure
	}

	conn, err := client.Exchange(ctx, code, redirectURI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exchanging the authorization code: %v\n", err)
		return subcommands.ExitFailure
	}

	// Name the connection after its bank. Purely cosmetic, so a failed
	// account listing only costs the pretty name.
	accounts, err := client.Accounts(ctx, conn.AccessToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot list accounts yet: %v\n", err)
	}
	conn.Provider = truelayer.ProviderName(accounts)

	store := truelayer.NewConnectionStore(cfg.ConnectionsFile())
	conn, err = store.Add(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Connected to %s (%d accounts), connection id %s.\n", conn.Provider, len(accounts), conn.ID)
	fmt.Println("Run 'exps sync' to import transactions.")
	return subcommands.ExitSuccess
}
