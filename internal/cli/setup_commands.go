package cli

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rehber360/rehber360-desktop/internal/setup"
)

// newSetupCmd creates the 'setup' command group for the first-run wizard.
func newSetupCmd() *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "First-run setup",
	}

	setupCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether first-run setup has been completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if engine.Wizard().Required() {
				fmt.Fprintln(cmd.OutOrStdout(), "Setup required: no administrator has been created yet")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Setup completed")
			}
			return nil
		},
	})

	setupCmd.AddCommand(newSetupAdminCmd())
	return setupCmd
}

// newSetupAdminCmd creates the 'setup admin' command, the terminal version
// of the wizard's admin page.
func newSetupAdminCmd() *cobra.Command {
	var email, name, surname string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create the first administrator account",
		Long: `Create the first administrator account and finish first-run setup.

Missing values are asked for interactively. The password is never taken
from a flag; it is read from the terminal without echo.

Password rules: at least 8 characters with an upper-case letter, a
lower-case letter and a digit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := newEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			wizard := engine.Wizard()
			if !wizard.Required() {
				fmt.Fprintln(cmd.OutOrStdout(), "Setup already completed")
				return nil
			}

			form := setup.DefaultAdminForm()
			if email != "" {
				form.Email = email
			}
			form.Name, form.Surname = name, surname
			if err := readAdminForm(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), &form); err != nil {
				return err
			}

			if err := wizard.Begin(); err != nil {
				return err
			}
			if err := wizard.CreateAdmin(GetContext(), form); err != nil {
				return err
			}
			if err := wizard.Complete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s created. Setup completed.\n", form.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Administrator e-mail (default "+setup.DefaultAdminEmail+")")
	cmd.Flags().StringVar(&name, "name", "", "First name")
	cmd.Flags().StringVar(&surname, "surname", "", "Last name")
	return cmd
}

// readAdminForm prompts for empty fields and the password until the form
// validates.
func readAdminForm(r *bufio.Reader, out io.Writer, form *setup.AdminForm) error {
	var err error
	if form.Name == "" {
		if form.Name, err = promptLine(r, out, "Ad", ""); err != nil {
			return err
		}
	}
	if form.Surname == "" {
		if form.Surname, err = promptLine(r, out, "Soyad", ""); err != nil {
			return err
		}
	}
	if form.Email, err = promptLine(r, out, "E-posta", form.Email); err != nil {
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		pwd, err := promptPassword(r, out, "Şifre")
		if err != nil {
			return err
		}
		if err := setup.ValidatePassword(pwd); err != nil {
			fmt.Fprintf(out, "  %v\n", err)
			continue
		}
		again, err := promptPassword(r, out, "Şifre (tekrar)")
		if err != nil {
			return err
		}
		if again != pwd {
			fmt.Fprintln(out, "  Şifreler eşleşmiyor")
			continue
		}
		form.Password = pwd
		return form.Validate()
	}
	return fmt.Errorf("no valid password entered")
}
