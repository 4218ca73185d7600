package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dpformance-site/pkg/models"
	"dpformance-site/pkg/services"
)

// newSendContactCmd creates a command that relays one message through the
// configured SMTP account, the same way the contact endpoint does
func newSendContactCmd() *cobra.Command {
	var sub models.ContactSubmission

	cmd := &cobra.Command{
		Use:   "send-contact",
		Short: "Send a contact message",
		Long:  `Validate and send a contact message to the configured recipient. Useful to check SMTP settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			mailer, err := services.NewSMTPMailer(a.cfg)
			if err != nil {
				return err
			}

			contact := services.NewContactService(mailer, a.cfg.ContactRecipient, 0, a.cfg.ContactWindow, a.logger)
			id, err := contact.Submit(cmd.Context(), "cli", sub)
			if err != nil {
				return fmt.Errorf("send contact: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent submission %s to %s\n", id, a.cfg.ContactRecipient)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub.Name, "name", "", "Sender name")
	cmd.Flags().StringVar(&sub.Email, "email", "", "Sender e-mail address")
	cmd.Flags().StringVar(&sub.Phone, "phone", "", "Sender phone number")
	cmd.Flags().StringVar(&sub.Message, "message", "", "Message body")
	return cmd
}
