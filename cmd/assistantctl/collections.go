package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	for _, kind := range []string{"lists", "schedules", "memory"} {
		kind := kind
		listCmd := &cobra.Command{
			Use:   kind,
			Short: fmt.Sprintf("Print the user's %s as JSON", kind),
			RunE: func(cmd *cobra.Command, args []string) error {
				resp, err := client().R().Get(fmt.Sprintf("/api/users/%s/%s", userFlag, kind))
				if err != nil {
					return err
				}
				if resp.IsError() {
					return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
				}
				fmt.Fprintln(os.Stdout, resp.String())
				return nil
			},
		}
		rootCmd.AddCommand(listCmd)
	}

	deleteCmd := &cobra.Command{
		Use:   "delete KIND NAME",
		Short: "Delete a collection and all its entries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().Delete(fmt.Sprintf("/api/users/%s/%s/%s", userFlag, args[0], args[1]))
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			fmt.Fprintf(os.Stdout, "deleted %s %q\n", args[0], args[1])
			return nil
		},
	}
	rootCmd.AddCommand(deleteCmd)
}
