// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"testing"
)

func TestTLSConfig(t *testing.T) {
	if _, err := TLSConfig(Config{}); err == nil {
		t.Errorf("TLSConfig without certificates or self-signed TLS should fail")
	}

	if _, err := TLSConfig(Config{TLSCert: "missing.pem", TLSKey: "missing.key"}); err == nil {
		t.Errorf("TLSConfig with missing certificate files should fail")
	}

	cfg, err := TLSConfig(Config{SelfTLS: true})
	if err != nil {
		t.Fatalf("self-signed TLSConfig should not fail: %s", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("self-signed TLSConfig should carry one certificate, got %d", len(cfg.Certificates))
	}
}

func TestListen(t *testing.T) {
	cfg := Config{Port: "0", SelfTLS: true, MaxConns: 2}

	ln, err := Listen(cfg)
	if err != nil {
		t.Fatalf("Listen should not fail: %s", err)
	}

	tlsConfig, err := TLSConfig(cfg)
	if err != nil {
		t.Fatalf("TLSConfig should not fail: %s", err)
	}

	srv := &http.Server{Handler: newTestRouter(t, cfg), TLSConfig: tlsConfig}
	go func() { _ = srv.ServeTLS(ln, "", "") }()
	defer srv.Close()

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}}
	res, err := client.Get(fmt.Sprintf("https://127.0.0.1:%d/v1/golomb/length?x=10&b=3", ln.Addr().(*net.TCPAddr).Port))
	if err != nil {
		t.Fatalf("request should not fail: %s", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status %d, want %d", res.StatusCode, http.StatusOK)
	}
}
