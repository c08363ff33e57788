// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/likexian/selfca"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/netutil"
)

// NewRouter registers the Golomb API and, when a GCS file is configured, the
// set query API under /v1.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.SetLogger(logger.WithLogger(func(c *gin.Context, z zerolog.Logger) zerolog.Logger {
		return zerolog.New(gin.DefaultWriter).With().Timestamp().Logger()
	})))

	v1 := router.Group("/v1")
	RegisterGolombApi(v1.Group("/golomb"), cfg.MaxEncodedBits)

	if cfg.GcsFile != "" {
		if err := RegisterSetApi(v1.Group("/gcs"), cfg.GcsFile, cfg.CacheSize); err != nil {
			return nil, errors.Wrapf(err, "error initializing set API for %s", cfg.GcsFile)
		}
	}

	return router, nil
}

// TLSConfig loads the configured certificate pair or generates a self-signed
// one.
func TLSConfig(cfg Config) (*tls.Config, error) {
	if cfg.TLSCert != "" && cfg.TLSKey != "" {
		pair, err := tls.LoadX509KeyPair(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return nil, errors.Wrap(err, "error loading TLS certificate")
		}
		return &tls.Config{Certificates: []tls.Certificate{pair}}, nil
	}

	if !cfg.SelfTLS {
		return nil, errors.New("server requires TLS configuration to start. " +
			"Please use either a self-signed certificate or set a certificate and key")
	}

	log.Warn().Msgf("using auto self-signed certificate for TLS. This is not recommended for production. Please consider using your own certificates.")
	caConfig := selfca.Certificate{
		IsCA:      true,
		KeySize:   2048,
		NotBefore: time.Now(),
		// 30 day self-signed cert.
		NotAfter: time.Now().Add(time.Duration(30*24) * time.Hour),
	}

	certificate, key, err := selfca.GenerateCertificate(caConfig)
	if err != nil {
		return nil, errors.Wrap(err, "error generating auto self-signed certificate")
	}

	pair, err := tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certificate}),
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error using auto self-signed certificate")
	}

	return &tls.Config{Certificates: []tls.Certificate{pair}}, nil
}

// Listen opens the server socket, capped at cfg.MaxConns concurrent
// connections when set.
func Listen(cfg Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		log.Debug().Msgf("limiting the server to %d connections", cfg.MaxConns)
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}
	return ln, nil
}

// Serve runs the TLS server until SIGINT or SIGTERM.
func Serve(cfg Config) error {
	router, err := NewRouter(cfg)
	if err != nil {
		return err
	}

	tlsConfig, err := TLSConfig(cfg)
	if err != nil {
		return err
	}

	ln, err := Listen(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("starting TLS Server on address: %s", ln.Addr())
		// certificates come from the tls config, no need to pass files
		if err := srv.ServeTLS(ln, "", ""); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("error starting server")
		}
	}()

	gracefulShutdown(srv)
	return nil
}

func gracefulShutdown(srv *http.Server) {
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("server Shutdown.")
	}
	log.Info().Msg("server exiting...")
}
