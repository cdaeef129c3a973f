// Command server runs the authoritative two-player pong match host:
// a TCP listener for registration, a UDP socket for paddle ingestion
// and snapshot broadcast, and a fixed-rate tick engine driving both.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/csyager/pong/internal/admission"
	"github.com/csyager/pong/internal/config"
	"github.com/csyager/pong/internal/engine"
	"github.com/csyager/pong/internal/ingress"
	"github.com/csyager/pong/internal/logging"
	"github.com/csyager/pong/internal/tickengine"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file overlaying the defaults")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatalf("failed to load config %q: %v", *configPath, err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		logging.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	tcpLn, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	defer tcpLn.Close()

	udpAddr, err := net.ResolveUDPAddr("udp", cfg.Addr)
	if err != nil {
		return err
	}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	defer udpConn.Close()

	logger.Info("listening",
		zap.String("addr", cfg.Addr),
		zap.Int("tick_rate_ms", cfg.TickRateMS),
	)

	e := engine.New(logger)
	limiter := admission.New(cfg.AdmissionMax, cfg.AdmissionWindow)

	mux := &ingress.Multiplexer{
		Engine:     e,
		TCP:        tcpLn,
		UDP:        udpConn,
		Logger:     logger,
		Admission:  limiter,
		TickRateMS: uint32(cfg.TickRateMS),
	}

	driver := tickengine.New(time.Duration(cfg.TickRateMS)*time.Millisecond, e, udpConn, logger)

	ctx, cancel := context.WithCancel(context.Background())

	ingressDone := make(chan struct{})
	go func() {
		defer close(ingressDone)
		mux.Run(ctx)
	}()

	go driver.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")

	// Stop ticking before tearing down the sockets the tick loop
	// writes to, then cancel ingress, then release registry slots.
	driver.Stop()
	cancel()
	<-ingressDone
	e.Shutdown()

	return nil
}
