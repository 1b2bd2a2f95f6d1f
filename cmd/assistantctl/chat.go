package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	chatCmd := &cobra.Command{
		Use:   "chat MESSAGE",
		Short: "Send a chat message and print the assistant's reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				Response      string `json:"response"`
				ActionResults []struct {
					Success bool   `json:"success"`
					Type    string `json:"type"`
					Error   string `json:"error"`
				} `json:"actionResults"`
			}
			resp, err := client().R().
				SetBody(map[string]string{"userId": userFlag, "message": args[0]}).
				SetResult(&out).
				Post("/api/chat")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			fmt.Fprintln(os.Stdout, out.Response)
			for _, res := range out.ActionResults {
				if res.Success {
					fmt.Fprintf(os.Stdout, "  [ok] %s\n", res.Type)
				} else {
					fmt.Fprintf(os.Stdout, "  [failed] %s\n", res.Error)
				}
			}
			return nil
		},
	}
	rootCmd.AddCommand(chatCmd)
}
