package trackerctl

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func newUserCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCommand(o))
	return cmd
}

func newUserAddCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <login> <name>",
		Short: "Register a user, prompting for the password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprint(out, "Password: ")
			password, err := readPassword()
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			defer common.WipeByteArray(password)

			fmt.Fprint(out, "Repeat password: ")
			confirm, err := readPassword()
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			defer common.WipeByteArray(confirm)

			if string(password) != string(confirm) {
				return errors.New("passwords do not match")
			}

			cfg, m, err := o.openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer m.Close()

			user, err := services.NewUserService(m, cfg).Register(cmd.Context(), args[0], args[1], string(password))
			if err != nil {
				if errors.Is(err, common.ErrorAlreadyExists) {
					return fmt.Errorf("login %q is taken", args[0])
				}
				return err
			}

			o.logger.Info(cmd.Context(), "user registered", "login", user.UserID, "id", user.ID)
			_, err = fmt.Fprintf(out, "user %s created with id %d\n", user.UserID, user.ID)
			return err
		},
	}
}
