package main

import (
	"errors"

	"github.com/spf13/cobra"

	"roomtour-backend/pkg/apiclient"
)

var errAPIUnreachable = errors.New("API is unreachable, queue left untouched")

func newQueueCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and replay the offline queue",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show queued operations in replay order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ops, err := a.store.List(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), ops)
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Replay the queue once if the API is reachable",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.client.Health(cmd.Context()); apiclient.IsOffline(err) {
					return errAPIUnreachable
				}
				res, err := a.monitor.ProcessQueue(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Probe the API and replay the queue on every reconnect",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()

				a.monitor.SetOnline(ctx, false)
				a.monitor.AddListener(func(online bool) {
					a.log.Info().Bool("online", online).Msg("Connectivity")
				})
				a.monitor.AddSyncListener(func(syncing bool) {
					a.log.Info().Bool("syncing", syncing).Msg("Queue replay")
				})
				a.store.AddChangeListener(func() {
					if has, err := a.store.HasOperations(ctx); err == nil {
						a.log.Debug().Bool("pending", has).Msg("Queue changed")
					}
				})

				a.monitor.Run(ctx, a.cfg.ProbeInterval)
				return nil
			},
		},
	)
	return cmd
}
