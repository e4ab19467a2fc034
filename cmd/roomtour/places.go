package main

import (
	"github.com/spf13/cobra"

	"roomtour-backend/pkg/apiclient"
	"roomtour-backend/pkg/offline"
)

// queued is printed when a submission went to the offline queue.
type queued struct {
	Queued      bool   `json:"queued"`
	OperationID int64  `json:"operation_id"`
	Type        string `json:"type"`
}

type placeFlags struct {
	name, location, dates, review string
	rating                        int
	images                        []string
	deletedPhotos                 []int64
}

func (f *placeFlags) register(cmd *cobra.Command, update bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "place name")
	cmd.Flags().StringVar(&f.location, "location", "", "location")
	cmd.Flags().StringVar(&f.dates, "dates", "", "dates of the stay, free form")
	cmd.Flags().IntVar(&f.rating, "rating", 0, "rating 0-5")
	cmd.Flags().StringVar(&f.review, "review", "", "review text")
	cmd.Flags().StringSliceVar(&f.images, "image", nil, "photo to attach (repeatable)")
	if update {
		cmd.Flags().Int64SliceVar(&f.deletedPhotos, "delete-photo", nil, "id of a photo to remove (repeatable)")
	}
}

// input sets only the flags the user passed.
func (f *placeFlags) input(cmd *cobra.Command) apiclient.PlaceInput {
	var in apiclient.PlaceInput
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = &f.name
	}
	if changed("location") {
		in.Location = &f.location
	}
	if changed("dates") {
		in.Dates = &f.dates
	}
	if changed("rating") {
		in.Rating = &f.rating
	}
	if changed("review") {
		in.Review = &f.review
	}
	in.DeletedPhotos = f.deletedPhotos
	return in
}

func newPlacesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "places",
		Short: "List, view and edit places",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all places, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				places, err := a.client.ListPlaces(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), places)
			},
		},
		&cobra.Command{
			Use:   "get <id|slug>",
			Short: "Show one place",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				place, err := a.client.GetPlace(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), place)
			},
		},
		newPlaceCreateCmd(a),
		newPlaceUpdateCmd(a),
		newPlacesExportCmd(a),
		&cobra.Command{
			Use:   "delete <id|slug>",
			Short: "Delete a place and its photos",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.client.DeletePlace(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "upload-images <id|slug> <file>...",
			Short: "Attach photos to a place",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				files, err := readFiles(args[1:])
				if err != nil {
					return err
				}
				images, err := a.client.UploadImages(cmd.Context(), args[0], files)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), images)
			},
		},
	)
	return cmd
}

func newPlaceCreateCmd(a *app) *cobra.Command {
	var flags placeFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a place; queued when the API is unreachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := flags.input(cmd)
			refs, err := fileRefs(flags.images)
			if err != nil {
				return err
			}

			place, err := a.client.CreatePlace(cmd.Context(), in)
			if apiclient.IsOffline(err) {
				return a.enqueue(cmd, offline.OpCreatePlace, "", in, refs)
			}
			if err != nil {
				return err
			}

			if err := a.attach(cmd, place, flags.images); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), place)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newPlaceUpdateCmd(a *app) *cobra.Command {
	var flags placeFlags
	cmd := &cobra.Command{
		Use:   "update <id|slug>",
		Short: "Update a place; queued when the API is unreachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.input(cmd)
			refs, err := fileRefs(flags.images)
			if err != nil {
				return err
			}

			place, err := a.client.UpdatePlace(cmd.Context(), args[0], in)
			if apiclient.IsOffline(err) {
				return a.enqueue(cmd, offline.OpUpdatePlace, args[0], in, refs)
			}
			if err != nil {
				return err
			}

			if err := a.attach(cmd, place, flags.images); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), place)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func (a *app) enqueue(cmd *cobra.Command, typ offline.OperationType, identifier string, in apiclient.PlaceInput, refs []offline.FileRef) error {
	op, err := offline.NewPlaceOperation(typ, identifier, in, refs)
	if err != nil {
		return err
	}
	id, err := a.store.Add(cmd.Context(), op)
	if err != nil {
		return err
	}
	a.log.Warn().Int64("operation_id", id).Msg("API unreachable, saved to offline queue")
	return printJSON(cmd.OutOrStdout(), queued{Queued: true, OperationID: id, Type: string(typ)})
}

// attach uploads photos after a successful save and refreshes place.
func (a *app) attach(cmd *cobra.Command, place *apiclient.Place, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	files, err := readFiles(paths)
	if err != nil {
		return err
	}
	images, err := a.client.UploadImages(cmd.Context(), place.Identifier(), files)
	if err != nil {
		return err
	}
	place.Images = append(place.Images, images...)
	return nil
}
