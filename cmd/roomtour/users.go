package main

import (
	"github.com/spf13/cobra"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "View and edit user profiles",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <username>",
			Short: "Show a profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				user, err := a.client.GetProfile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), user)
			},
		},
		&cobra.Command{
			Use:   "describe <username> <text>",
			Short: "Set the profile description",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				user, err := a.client.UpdateDescription(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), user)
			},
		},
		&cobra.Command{
			Use:   "avatar <username> <file>",
			Short: "Replace the avatar",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := readFile(args[1])
				if err != nil {
					return err
				}
				user, err := a.client.UpdateAvatar(cmd.Context(), args[0], f)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), user)
			},
		},
		&cobra.Command{
			Use:   "share <username>",
			Short: "Print the share link of a profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				share, err := a.client.ShareProfile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), share)
			},
		},
	)
	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a single image to /upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFile(args[0])
			if err != nil {
				return err
			}
			res, err := a.client.Upload(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
