package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"

	"github.com/nuclearcat/mybackup/keygen"
)

var genkeyCmd = &cobra.Command{
	Use:   "genkey <path>",
	Short: "Generate an ECDSA SSH key pair for fleet access",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		pub, err := keygen.Generate(path, cfgKeyComment)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Private key: %s\n", path)
		_, _ = fmt.Fprintf(out, "Public key:  %s.pub\n", path)
		_, _ = fmt.Fprintf(out, "Fingerprint: %s\n", ssh.FingerprintSHA256(pub))
		_, _ = fmt.Fprintln(out, "Add the public key to the backup user's authorized keys on every host.")
		return nil
	},
}

func init() {
	genkeyCmd.Flags().StringVar(&cfgKeyComment, "comment", "mybackup", "Comment stored with the public key")
}
