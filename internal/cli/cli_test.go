// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alvinbaena/golomb/internal/container"
	"github.com/alvinbaena/golomb/pkg/golomb"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag back to its default, flags and their variables
// outlive a single execution.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLenCommand(t *testing.T) {
	out, err := run(t, "len", "-b", "3", "10", "0", "7")
	if err != nil {
		t.Fatalf("len should not fail: %s", err)
	}
	if want := "10\t6\n0\t2\n7\t5\ntotal\t13\n"; out != want {
		t.Errorf("len: %q, want: %q", out, want)
	}

	if _, err = run(t, "len", "-b", "0", "10"); err == nil {
		t.Errorf("len with b=0 should fail")
	}
	if _, err = run(t, "len", "-b", "3", "ten"); err == nil {
		t.Errorf("len with an invalid value should fail")
	}
	if _, err = run(t, "len", "-b", "1", "18446744073709551615"); !errors.Is(err, golomb.ErrTooLong) {
		t.Errorf("len of an uncountable code should fail with ErrTooLong, got: %v", err)
	}
	if _, err = run(t, "len", "10"); err == nil {
		t.Errorf("len without a modulus should fail")
	}
}

func TestParamCommand(t *testing.T) {
	out, err := run(t, "param", "b", "-p", "0.1")
	if err != nil {
		t.Fatalf("param b should not fail: %s", err)
	}
	if want := "b\t7\nrice_k\t2\n"; out != want {
		t.Errorf("param b: %q, want: %q", out, want)
	}

	out, err = run(t, "param", "p", "-b", "1")
	if err != nil {
		t.Fatalf("param p should not fail: %s", err)
	}
	if !strings.HasPrefix(out, "p\t0.5\nsuccess\t") {
		t.Errorf("param p: %q", out)
	}

	if _, err = run(t, "param", "b", "-p", "1"); err == nil {
		t.Errorf("param b with p=1 should fail")
	}
	if _, err = run(t, "param", "p", "-b", "0"); err == nil {
		t.Errorf("param p with b=0 should fail")
	}
}

func TestEncodeDecodeCommands(t *testing.T) {
	in := filepath.Join(t.TempDir(), "values.txt")
	if err := os.WriteFile(in, []byte("10 0 7\n1000\n"), 0o644); err != nil {
		t.Fatalf("Should not fail writing file: %s", err)
	}
	outDir := t.TempDir()

	if _, err := run(t, "encode", "-b", "3", "--order", "le", "-o", outDir, in); err != nil {
		t.Fatalf("encode should not fail: %s", err)
	}

	glb := filepath.Join(outDir, "values.glb")
	file, err := os.Open(glb)
	if err != nil {
		t.Fatalf("encode should write %s: %s", glb, err)
	}
	h, _, err := container.Decode(file)
	_ = file.Close()
	if err != nil || h.Modulus != 3 || h.Order.String() != "le" {
		t.Errorf("unexpected container: %+v, %v", h, err)
	}

	out, err := run(t, "decode", "-i", glb)
	if err != nil {
		t.Fatalf("decode should not fail: %s", err)
	}
	if diff := cmp.Diff("10\n0\n7\n1000\n", out); diff != "" {
		t.Errorf("decode mismatch (-want +got):\n%s", diff)
	}

	decoded := filepath.Join(t.TempDir(), "decoded.txt")
	if _, err = run(t, "decode", "-i", glb, "-o", decoded); err != nil {
		t.Fatalf("decode to a file should not fail: %s", err)
	}
	if content, _ := os.ReadFile(decoded); string(content) != "10\n0\n7\n1000\n" {
		t.Errorf("decoded file: %q", content)
	}

	// existing output without overwrite
	if _, err = run(t, "encode", "-p", "0.5", "-o", outDir, in); err == nil {
		t.Errorf("encode over an existing output without overwrite should fail")
	}
	if _, err = run(t, "encode", "-p", "0.5", "--overwrite", "-o", outDir, in); err != nil {
		t.Fatalf("encode with overwrite should not fail: %s", err)
	}

	if _, err = run(t, "encode", "-b", "0", "-o", outDir, in); err == nil {
		t.Errorf("encode with b=0 should fail")
	}
	if _, err = run(t, "encode", "--order", "middle", "-o", outDir, in); err == nil {
		t.Errorf("encode with an unknown order should fail")
	}
	if _, err = run(t, "decode", "-i", in); err == nil {
		t.Errorf("decode of a text file should fail")
	}
}

func TestGcsCommands(t *testing.T) {
	var sb strings.Builder
	for _, p := range []string{"password", "123456", "qwerty"} {
		sum := sha1.Sum([]byte(p))
		sb.WriteString(strings.ToUpper(hex.EncodeToString(sum[:])))
		sb.WriteString(":7\n")
	}
	in := filepath.Join(t.TempDir(), "hashes.txt")
	if err := os.WriteFile(in, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("Should not fail writing file: %s", err)
	}
	set := filepath.Join(t.TempDir(), "set.gcs")

	if _, err := run(t, "gcs", "create", "-i", in, "-o", set, "-p", "1024", "-g", "1"); err != nil {
		t.Fatalf("gcs create should not fail: %s", err)
	}
	if _, err := run(t, "gcs", "create", "-i", in, "-o", set); err == nil {
		t.Errorf("gcs create over an existing file without overwrite should fail")
	}

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"password"}, "password is present\n"},
		{[]string{"1mag@saG(@31*sasd."}, "1mag@saG(@31*sasd. is not present\n"},
		{[]string{"-s", "7c4a8d09ca3762af61e59520943dc26494f8941b"}, "7c4a8d09ca3762af61e59520943dc26494f8941b is present\n"},
	}

	for _, tc := range cases {
		out, err := run(t, append([]string{"gcs", "query", "-i", set}, tc.args...)...)
		if err != nil {
			t.Fatalf("gcs query %v should not fail: %s", tc.args, err)
		}
		if out != tc.want {
			t.Errorf("gcs query %v: %q, want: %q", tc.args, out, tc.want)
		}
	}

	if _, err := run(t, "gcs", "query", "-i", set, "-s", "not-hex"); err == nil {
		t.Errorf("gcs query with an invalid hash should fail")
	}
	if _, err := run(t, "gcs", "query", "-i", set, "--hash-mode", "sip", "-s", "7c4a8d09ca3762af"); err == nil {
		t.Errorf("gcs query of a hash with sip mode should fail")
	}
}

func TestServeConfig(t *testing.T) {
	if _, err := run(t, "serve", "--help"); err != nil {
		t.Fatalf("serve --help should not fail: %s", err)
	}

	port, inputFile, selfTLS, maxConns, cacheSize = 8443, "set.gcs", true, 10, 0
	cfg := serveConfig()
	if cfg.Port != "8443" || cfg.GcsFile != "set.gcs" || !cfg.SelfTLS || cfg.MaxConns != 10 || cfg.CacheSize != 0 {
		t.Errorf("unexpected serve config: %+v", cfg)
	}
}
