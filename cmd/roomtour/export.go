package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"roomtour-backend/pkg/apiclient"
)

const exportSheet = "Places"

var exportHeaders = []string{"ID", "Slug", "Name", "Location", "Dates", "Rating", "Review", "Created At", "Photos"}

func newPlacesExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write all places to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			places, err := a.client.ListPlaces(cmd.Context())
			if err != nil {
				return err
			}

			f, err := buildPlacesWorkbook(places)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := f.SaveAs(args[0]); err != nil {
				return fmt.Errorf("save %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"file": args[0], "places": len(places)})
		},
	}
}

// buildPlacesWorkbook writes one row per place under a bold header row.
func buildPlacesWorkbook(places []apiclient.Place) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(exportSheet, "A1", lastHeader, style)
	}

	for i, p := range places {
		photos := make([]string, 0, len(p.Images))
		for _, img := range p.Images {
			photos = append(photos, img.ImageURL)
		}

		row := []interface{}{p.ID, p.Slug, p.Name, p.Location, p.Dates, p.Rating, p.Review, p.CreatedAt, strings.Join(photos, "\n")}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
