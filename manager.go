package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mediaMetaViewer/media"
	"mediaMetaViewer/transcode"
)

var version = "dev" // set by ldflags during build

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "mediameta",
		Short: "Show capture date, location, duration and resolution of photos and videos",
		Long: `mediameta reads the metadata embedded in an uploaded photo or video:
capture timestamp and GPS coordinates, plus duration and resolution for video.
QuickTime uploads are converted to MP4 with ffmpeg before they are read.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	root.AddCommand(newServeCmd(&cfgFile))
	root.AddCommand(newInspectCmd(&cfgFile))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

func loadConfig(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		return DefaultConfig(), nil
	}
	cfg, err := LoadFromFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newInspector(cfg *Config, log logrus.FieldLogger) *media.Inspector {
	return media.NewInspector(
		media.NewImageExtractor(),
		media.NewVideoExtractor(media.NewFFProbe(cfg.FFProbePath), media.MP4Inspector{}),
		transcode.New(cfg.FFmpegPath, cfg.TempDir, log),
		log,
	)
}

func newServeCmd(cfgFile *string) *cobra.Command {
	var (
		addr     string
		logJSON  bool
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and upload page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("log-json") {
				cfg.LogJSON = logJSON
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cfg, cmd.ErrOrStderr())
			return StartServer(cfg, log, newInspector(cfg, log))
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "HTTP listen address")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "output JSON logs")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	return cmd
}

type inspectOutput struct {
	media.Result
	Lines []string `json:"lines"`
	Error string   `json:"error,omitempty"`
}

func newInspectCmd(cfgFile *string) *cobra.Command {
	var (
		mimeType string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the metadata of one photo or video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if mimeType == "" {
				mimeType = media.TypeByExtension(args[0])
			}

			log := newLogger(cfg, cmd.ErrOrStderr())
			res, err := newInspector(cfg, log).Inspect(cmd.Context(), media.Upload{Path: args[0], MimeType: mimeType})
			lines := media.Report(res, err)

			out := cmd.OutOrStdout()
			if asJSON {
				res.Record = res.Record.Presented()
				o := inspectOutput{Result: res, Lines: lines}
				if err != nil {
					o.Error = err.Error()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if jerr := enc.Encode(o); jerr != nil {
					return jerr
				}
			} else {
				for _, l := range lines {
					fmt.Fprintln(out, l)
				}
			}

			// Missing metadata is a normal answer, not a failed command.
			if errors.Is(err, media.ErrExtractionFailed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&mimeType, "type", "t", "", "declared MIME type (guessed from the extension when empty)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	return cmd
}
