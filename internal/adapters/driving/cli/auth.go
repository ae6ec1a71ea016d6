package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/connectors/google"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise Gmail access",
	Long: `Runs the one-time Google OAuth flow for read-only Gmail access.

You need an OAuth client secrets file (downloaded from the Google Cloud
console) at the path configured under gmail.credentials_path. The command
prints a consent URL; open it, approve access, and paste the code back.
The resulting token is cached so scheduled runs need no interaction.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gmailCfg := gmailConfigFrom(cfg)

	oauthCfg, err := google.LoadOAuthConfig(gmailCfg.CredentialsPath)
	if err != nil {
		return fmt.Errorf("load OAuth client secrets: %w", err)
	}

	url := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	cmd.Println("Open the following URL in your browser and authorise access:")
	cmd.Println()
	cmd.Printf("  %s\n", url)
	cmd.Println()

	readCode := func() (string, error) {
		cmd.Print("Enter the authorisation code: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	if err := google.Authorise(context.Background(), oauthCfg, gmailCfg.TokenPath, readCode); err != nil {
		return err
	}

	cmd.Printf("Gmail authorised. Token cached at %s\n", gmailCfg.TokenPath)
	return nil
}
