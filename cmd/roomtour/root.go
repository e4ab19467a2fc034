package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"roomtour-backend/pkg/apiclient"
	"roomtour-backend/pkg/offline"
)

// app is built once per invocation in PersistentPreRunE and released by
// close once Execute returns, whether or not the command failed.
type app struct {
	cfg     *Config
	log     zerolog.Logger
	client  *apiclient.Client
	store   *offline.SQLiteStore
	monitor *offline.Monitor
}

func newRootCmd() (*cobra.Command, *app) {
	var (
		cfgPath string
		a       = &app{}
	)

	root := &cobra.Command{
		Use:           "roomtour",
		Short:         "Client for the roomtour places API with an offline queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/"+configFileName+")")

	root.AddCommand(
		newPlacesCmd(a),
		newQueueCmd(a),
		newUsersCmd(a),
		newUploadCmd(a),
	)
	return root, a
}

func (a *app) init(cmd *cobra.Command, cfgPath string) error {
	// 1. Config
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// 2. Logger (stderr, so stdout stays valid JSON)
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(level).With().Timestamp().Logger()

	// 3. API client
	a.client, err = apiclient.New(apiclient.Config{
		BaseURL:  cfg.APIURL,
		Timeout:  cfg.Timeout,
		CacheTTL: cfg.CacheTTL,
		Logger:   a.log,
	})
	if err != nil {
		return err
	}

	// 4. Offline queue + monitor
	a.store, err = offline.OpenSQLite(cmd.Context(), cfg.QueuePath)
	if err != nil {
		return err
	}
	a.monitor = offline.NewMonitor(a.store, a.client, a.log, true)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readFile(path string) (apiclient.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return apiclient.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return apiclient.File{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func readFiles(paths []string) ([]apiclient.File, error) {
	files := make([]apiclient.File, 0, len(paths))
	for _, p := range paths {
		f, err := readFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// fileRefs keeps absolute paths; the files are read again at replay time.
func fileRefs(paths []string) ([]offline.FileRef, error) {
	refs := make([]offline.FileRef, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("attach %s: %w", p, err)
		}
		refs = append(refs, offline.FileRef{Path: abs, Name: filepath.Base(abs)})
	}
	return refs, nil
}
