package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/vdparikh/sbox/aescbc"
	"github.com/vdparikh/sbox/tinkcbc"
)

// keyFlags registers --key and --keyset on fs. A keyset file takes the
// place of --key by exporting its primary key as hex.
type keyFlags struct {
	key    *string
	keyset *string
}

func addKeyFlags(fs *flag.FlagSet) keyFlags {
	return keyFlags{
		key:    fs.String("key", "", "hex AES key (32/48/64 chars) or passphrase"),
		keyset: fs.String("keyset", "", "cleartext Tink keyset JSON written by keygen"),
	}
}

func (k keyFlags) resolve() (string, error) {
	if *k.keyset == "" {
		if *k.key == "" {
			return "", errors.New("--key or --keyset is required")
		}
		return *k.key, nil
	}
	if *k.key != "" {
		return "", errors.New("--key and --keyset are mutually exclusive")
	}
	if err := tinkcbc.Register(); err != nil {
		return "", fmt.Errorf("register key manager: %w", err)
	}
	handle, err := loadKeyset(*k.keyset)
	if err != nil {
		return "", err
	}
	raw, err := tinkcbc.PrimaryKey(handle)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func (env *cliEnv) service() *aescbc.Service {
	opts := append(env.cfg.CipherOptions(), aescbc.WithLogger(env.logger))
	return aescbc.NewService(opts...)
}

func reportCipherError(op string, err error) int {
	fmt.Fprintf(stderr, "%s: %v\n", op, err)
	if aescbc.KindOf(err) == aescbc.KindPadding {
		fmt.Fprintln(stderr, "hint: the key or IV does not match the one used to encrypt")
	}
	return 1
}

func runEncryptText(env *cliEnv, args []string) int {
	fs := flag.NewFlagSet("encrypt-text", flag.ContinueOnError)
	fs.SetOutput(stderr)
	keys := addKeyFlags(fs)
	text := fs.String("text", "", "plaintext to encrypt")
	iv := fs.String("iv", "", "hex IV (16 bytes); random when empty")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	key, err := keys.resolve()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ct, ivHex, err := env.service().EncryptText(*text, key, *iv)
	if err != nil {
		return reportCipherError("encrypt", err)
	}
	fmt.Fprintf(stdout, "ciphertext: %s\niv: %s\n", ct, ivHex)
	return 0
}

func runDecryptText(env *cliEnv, args []string) int {
	fs := flag.NewFlagSet("decrypt-text", flag.ContinueOnError)
	fs.SetOutput(stderr)
	keys := addKeyFlags(fs)
	ct := fs.String("ciphertext", "", "base64 ciphertext")
	iv := fs.String("iv", "", "hex IV used for encryption")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	key, err := keys.resolve()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	pt, err := env.service().DecryptText(*ct, key, *iv)
	if err != nil {
		return reportCipherError("decrypt", err)
	}
	fmt.Fprintln(stdout, pt)
	return 0
}

func runEncryptFile(env *cliEnv, args []string) int {
	fs := flag.NewFlagSet("encrypt-file", flag.ContinueOnError)
	fs.SetOutput(stderr)
	keys := addKeyFlags(fs)
	in := fs.String("in", "", "file to encrypt")
	outDir := fs.String("out", env.cfg.OutputDir, "output directory")
	iv := fs.String("iv", "", "hex IV (16 bytes); random when empty")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *in == "" {
		fmt.Fprintln(stderr, "--in is required")
		return 2
	}
	key, err := keys.resolve()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	path, ivHex, err := env.service().EncryptFile(*in, key, *outDir, *iv)
	if err != nil {
		return reportCipherError("encrypt", err)
	}
	fmt.Fprintf(stdout, "output: %s\niv: %s\n", path, ivHex)
	return 0
}

func runDecryptFile(env *cliEnv, args []string) int {
	fs := flag.NewFlagSet("decrypt-file", flag.ContinueOnError)
	fs.SetOutput(stderr)
	keys := addKeyFlags(fs)
	in := fs.String("in", "", "file to decrypt")
	outDir := fs.String("out", env.cfg.OutputDir, "output directory")
	iv := fs.String("iv", "", "hex IV used for encryption")
	ext := fs.String("ext", "", "extension to append to the decrypted file name")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *in == "" {
		fmt.Fprintln(stderr, "--in is required")
		return 2
	}
	key, err := keys.resolve()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	path, err := env.service().DecryptFile(*in, key, *outDir, *iv, *ext)
	if err != nil {
		return reportCipherError("decrypt", err)
	}
	fmt.Fprintf(stdout, "output: %s\n", path)
	return 0
}

func runKeygen(env *cliEnv, args []string) int {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	length := fs.Int("length", env.cfg.Cipher.KeyLength, "key length in bytes: 16, 24, or 32")
	out := fs.String("out", "", "write a cleartext Tink keyset JSON to this path")
	fromHex := fs.String("from-hex", "", "wrap an existing hex key instead of generating one")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := tinkcbc.Register(); err != nil {
		fmt.Fprintf(stderr, "register key manager: %v\n", err)
		return 1
	}

	var handle *keyset.Handle
	var err error
	if *fromHex != "" {
		handle, err = tinkcbc.NewKeysetHandleFromHex(*fromHex)
	} else {
		tmpl, terr := tinkcbc.KeyTemplateForLength(*length)
		if terr != nil {
			fmt.Fprintln(stderr, terr)
			return 2
		}
		handle, err = keyset.NewHandle(tmpl)
	}
	if err != nil {
		fmt.Fprintf(stderr, "create keyset: %v\n", err)
		return 1
	}

	raw, err := tinkcbc.PrimaryKey(handle)
	if err != nil {
		fmt.Fprintf(stderr, "export key: %v\n", err)
		return 1
	}

	if *out != "" {
		// Cleartext keysets are for local tooling only; wrap with an AEAD for
		// anything stored long term.
		if err := storeKeyset(handle, *out); err != nil {
			fmt.Fprintf(stderr, "store keyset: %v\n", err)
			return 1
		}
		env.logger.WithField("path", *out).Info("wrote keyset")
	}
	fmt.Fprintln(stdout, hex.EncodeToString(raw))
	return 0
}

func storeKeyset(handle *keyset.Handle, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := insecurecleartextkeyset.Write(handle, keyset.NewJSONWriter(f)); err != nil {
		return fmt.Errorf("failed to write keyset: %w", err)
	}
	return nil
}

func loadKeyset(path string) (*keyset.Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyset: %w", err)
	}
	defer f.Close()

	handle, err := insecurecleartextkeyset.Read(keyset.NewJSONReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read keyset: %w", err)
	}
	return handle, nil
}
