package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"asterix034/internal/app"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var showVersion bool
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "cat034",
		Short: "ASTERIX Category 034 codec",
		Long: `Encoder, decoder and UDP listener for ASTERIX Category 034
monoradar service messages (north marker, sector crossing, filtering,
jamming and solar storm reports).

Example usage:
  cat034 decode --hex capture.hex
  cat034 encode -o out.bin messages.yaml
  cat034 listen --listen :8600 --archive-dir ./archive`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				app.ShowVersion(stdout)
				return nil
			}
			return cmd.Help()
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	newLogger := func() *logrus.Logger {
		logger := logrus.New()
		logger.SetOutput(stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}
		return logger
	}

	rootCmd.AddCommand(
		newDecodeCmd(stdin, stdout, newLogger),
		newEncodeCmd(stdin, stdout),
		newValidateCmd(stdin, stdout, newLogger),
		newListenCmd(&verbose),
	)

	return rootCmd
}

// openInput returns stdin for "" or "-", the named file otherwise
func openInput(stdin io.Reader, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return bufio.NewReader(f), func() { f.Close() }, nil
}

func newDecodeCmd(stdin io.Reader, stdout io.Writer, newLogger func() *logrus.Logger) *cobra.Command {
	var hexInput bool
	var noValidate bool

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode data blocks into JSON lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeInput, err := openInput(stdin, args)
			if err != nil {
				return err
			}
			defer closeInput()

			data, err := app.ReadInput(in, hexInput)
			if err != nil {
				return err
			}

			logger := newLogger()
			stats, err := app.DecodeAll(data, stdout, !noValidate, logger)
			logger.WithFields(stats.Fields()).Debug("Decode finished")
			return err
		},
	}

	cmd.Flags().BoolVarP(&hexInput, "hex", "x", false, "Input is hex text")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip mandatory item checks")
	return cmd
}

func newEncodeCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var hexOutput bool
	var outputPath string

	cmd := &cobra.Command{
		Use:   "encode [file.yaml]",
		Short: "Encode YAML documents into data blocks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeInput, err := openInput(stdin, args)
			if err != nil {
				return err
			}
			defer closeInput()

			encoded, err := app.EncodeYAML(in)
			if err != nil {
				return err
			}

			if hexOutput {
				encoded = []byte(fmt.Sprintf("%X\n", encoded))
			}

			if outputPath != "" {
				return os.WriteFile(outputPath, encoded, 0644)
			}
			_, err = stdout.Write(encoded)
			return err
		},
	}

	cmd.Flags().BoolVarP(&hexOutput, "hex", "x", false, "Write hex text instead of binary")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newValidateCmd(stdin io.Reader, stdout io.Writer, newLogger func() *logrus.Logger) *cobra.Command {
	var hexInput bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check decoded records for mandatory and forbidden items",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeInput, err := openInput(stdin, args)
			if err != nil {
				return err
			}
			defer closeInput()

			data, err := app.ReadInput(in, hexInput)
			if err != nil {
				return err
			}

			problems, err := app.ValidateAll(data, stdout, newLogger())
			if err != nil {
				return err
			}
			if problems > 0 {
				return fmt.Errorf("%d problems found", problems)
			}
			fmt.Fprintln(stdout, "ok")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&hexInput, "hex", "x", false, "Input is hex text")
	return cmd
}

func newListenCmd(verbose *bool) *cobra.Command {
	var configPath string
	config := app.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive data blocks over UDP and archive them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config
			if configPath != "" {
				loaded, err := app.LoadConfig(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = overrideFlags(cmd, loaded, config)
			}
			cfg.Verbose = cfg.Verbose || *verbose

			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			return application.Start()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVarP(&config.ListenAddr, "listen", "l", config.ListenAddr, "UDP listen address")
	cmd.Flags().StringVarP(&config.ArchiveDir, "archive-dir", "a", config.ArchiveDir, "Record archive directory (empty to disable)")
	cmd.Flags().BoolVarP(&config.ArchiveUTC, "utc", "u", config.ArchiveUTC, "Use UTC for archive rotation")
	cmd.Flags().IntVar(&config.RetentionDays, "retention-days", config.RetentionDays, "Remove archive files older than this (0 keeps all)")
	cmd.Flags().BoolVar(&config.Validate, "validate", config.Validate, "Check mandatory and forbidden items")
	cmd.Flags().BoolVar(&config.DropInvalid, "drop-invalid", config.DropInvalid, "Do not write messages that fail validation")
	cmd.Flags().BoolVar(&config.Stdout, "stdout", config.Stdout, "Print JSON lines to stdout")
	cmd.Flags().StringVar(&config.Logs.Directory, "log-dir", config.Logs.Directory, "Application log directory")
	cmd.Flags().StringVar(&config.MQTT.Broker, "mqtt-broker", config.MQTT.Broker, "MQTT broker URL, e.g. tcp://localhost:1883")
	cmd.Flags().StringVar(&config.MQTT.Topic, "mqtt-topic", config.MQTT.Topic, "MQTT topic")

	return cmd
}

// overrideFlags copies explicitly set flags from flagCfg over the loaded file
func overrideFlags(cmd *cobra.Command, loaded, flagCfg app.Config) app.Config {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		loaded.ListenAddr = flagCfg.ListenAddr
	}
	if flags.Changed("archive-dir") {
		loaded.ArchiveDir = flagCfg.ArchiveDir
	}
	if flags.Changed("utc") {
		loaded.ArchiveUTC = flagCfg.ArchiveUTC
	}
	if flags.Changed("retention-days") {
		loaded.RetentionDays = flagCfg.RetentionDays
	}
	if flags.Changed("validate") {
		loaded.Validate = flagCfg.Validate
	}
	if flags.Changed("drop-invalid") {
		loaded.DropInvalid = flagCfg.DropInvalid
	}
	if flags.Changed("stdout") {
		loaded.Stdout = flagCfg.Stdout
	}
	if flags.Changed("log-dir") {
		loaded.Logs.Directory = flagCfg.Logs.Directory
	}
	if flags.Changed("mqtt-broker") {
		loaded.MQTT.Broker = flagCfg.MQTT.Broker
	}
	if flags.Changed("mqtt-topic") {
		loaded.MQTT.Topic = flagCfg.MQTT.Topic
	}
	return loaded
}
