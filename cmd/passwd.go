package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func Passwd() *cobra.Command {
	var password string
	var cost int

	cmd := &cobra.Command{
		Use:   "passwd [-p PASSWORD] [--cost COST]",
		Short: "Generate the bcrypt hash for auth.password",

		Args: cobra.ExactArgs(0),

		RunE: func(_ *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password could not be empty")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
			if err != nil {
				return fmt.Errorf("bcrypt: %w", err)
			}
			fmt.Println(string(hash))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&password, "password", "p", "", "The password, read from stdin if empty")
	flags.IntVarP(&cost, "cost", "", bcrypt.DefaultCost, "The bcrypt cost")

	return cmd
}
