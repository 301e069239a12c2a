package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"asterix034/internal/cat034"
	"asterix034/internal/datablock"
	"asterix034/internal/logging"
	"asterix034/internal/output"
)

// packet is one received datagram
type packet struct {
	data     []byte
	source   string
	received time.Time
}

// Application listens for CAT034 data blocks over UDP and writes every
// decoded message to the archive, stdout and MQTT
type Application struct {
	config    Config
	logger    *logrus.Logger
	logCloser io.Closer
	stdout    io.Writer

	conn     net.PacketConn
	archive  *logging.Archive
	mqtt     *output.MQTTSink
	writer   *output.Writer
	pipeline *Pipeline

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	ready  chan struct{}
}

// NewApplication creates a new application instance
func NewApplication(config Config) (*Application, error) {
	if err := config.Check(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := logging.NewLogger(config.Verbose, config.Logs)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Application{
		config:    config,
		logger:    logger,
		logCloser: closer,
		stdout:    os.Stdout,
		ctx:       ctx,
		cancel:    cancel,
		ready:     make(chan struct{}),
	}, nil
}

// Start runs until SIGINT or SIGTERM
func (app *Application) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

// Run starts every component and blocks until ctx is done
func (app *Application) Run(ctx context.Context) error {
	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("Starting CAT034 listener")

	if err := app.initializeComponents(); err != nil {
		close(app.ready)
		app.shutdown()
		return fmt.Errorf("failed to initialize components: %w", err)
	}

	app.run()
	close(app.ready)

	select {
	case <-ctx.Done():
		app.logger.Info("Received shutdown signal")
	case <-app.ctx.Done():
	}

	app.shutdown()
	return nil
}

// Addr returns the bound UDP address once the listener is up
func (app *Application) Addr() net.Addr {
	<-app.ready
	if app.conn == nil {
		return nil
	}
	return app.conn.LocalAddr()
}

// Stats returns the processing counters
func (app *Application) Stats() *Stats {
	<-app.ready
	if app.pipeline == nil {
		return &Stats{}
	}
	return app.pipeline.Stats()
}

func (app *Application) initializeComponents() error {
	var err error
	var sinks []output.Sink

	if app.config.ArchiveDir != "" {
		app.archive, err = logging.NewArchive(app.config.ArchiveDir, app.config.ArchiveUTC, app.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize archive: %w", err)
		}
		sinks = append(sinks, app.archive)
	}

	if app.config.Stdout {
		sinks = append(sinks, output.NewStreamSink(app.stdout))
	}

	if app.config.MQTT.Broker != "" {
		app.mqtt, err = output.NewMQTTSink(app.config.MQTT, app.logger)
		if err != nil {
			return err
		}
		sinks = append(sinks, app.mqtt)
	}

	app.writer = output.NewWriter(app.logger, sinks...)
	app.pipeline = NewPipeline(app.writer, app.logger, app.config.Validate, app.config.DropInvalid)

	app.conn, err = net.ListenPacket("udp", app.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.config.ListenAddr, err)
	}

	app.logger.WithFields(logrus.Fields{
		"listen":  app.conn.LocalAddr().String(),
		"archive": app.config.ArchiveDir,
		"mqtt":    app.config.MQTT.Broker,
		"sinks":   len(sinks),
	}).Info("Components initialized")

	return nil
}

func (app *Application) run() {
	packets := make(chan packet, app.config.QueueSize)

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer close(packets)
		app.receive(packets)
	}()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.process(packets)
	}()

	if app.archive != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.archive.Start(app.ctx)
		}()

		if app.config.RetentionDays > 0 {
			app.wg.Add(1)
			go func() {
				defer app.wg.Done()
				app.cleanupArchive()
			}()
		}
	}

	if app.config.StatsInterval > 0 {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.reportStatistics()
		}()
	}

	app.logger.Info("All components started successfully")
}

// receive reads datagrams until the connection is closed
func (app *Application) receive(packets chan<- packet) {
	buf := make([]byte, cat034.MaxBlockLength)

	for {
		n, addr, err := app.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || app.ctx.Err() != nil {
				app.logger.Info("UDP receiver stopped")
				return
			}
			app.logger.WithError(err).Warn("UDP read failed")
			continue
		}

		p := packet{
			data:     append([]byte(nil), buf[:n]...),
			source:   addr.String(),
			received: time.Now().UTC(),
		}

		select {
		case packets <- p:
		case <-app.ctx.Done():
			return
		}
	}
}

// process decodes queued datagrams in arrival order
func (app *Application) process(packets <-chan packet) {
	decoder := datablock.NewDecoder(app.logger)

	for p := range packets {
		app.pipeline.HandlePacket(decoder, p.data, p.source, p.received)
	}
	app.logger.Info("Packet processing stopped")
}

func (app *Application) cleanupArchive() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		if err := app.archive.CleanupOld(app.config.RetentionDays); err != nil {
			app.logger.WithError(err).Warn("Archive cleanup failed")
		}

		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (app *Application) reportStatistics() {
	ticker := time.NewTicker(app.config.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			fields := app.pipeline.Stats().Fields()
			written, failed := app.writer.Stats()
			fields["written"] = written
			fields["write_failed"] = failed
			app.logger.WithFields(fields).Info("CAT034 processing statistics")
		}
	}
}

// shutdown gracefully shuts down the application
func (app *Application) shutdown() {
	app.logger.Info("Shutting down application")
	app.cancel()

	if app.conn != nil {
		app.conn.Close()
	}

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		app.logger.Info("All goroutines finished")
	case <-time.After(5 * time.Second):
		app.logger.Warn("Shutdown timeout, forcing exit")
	}

	if app.mqtt != nil {
		app.mqtt.Close()
	}
	if app.archive != nil {
		app.archive.Close()
	}

	app.logger.Info("Shutdown completed")
	app.logCloser.Close()
}
