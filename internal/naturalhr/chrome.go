package naturalhr

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	_ "modernc.org/sqlite"
)

// chromeSalt and chromeIV are fixed by Chrome's os_crypt on Linux and macOS.
var (
	chromeSalt = []byte("saltysalt")
	chromeIV   = bytes.Repeat([]byte{' '}, aes.BlockSize)
)

// hostHashVersion is the cookie DB version from which Chrome prefixes the
// plaintext with a SHA-256 of the host key.
const hostHashVersion = 24

// keyFunc returns the AES key for an encryption version prefix ("v10", "v11").
type keyFunc func(ctx context.Context, version string) ([]byte, error)

// ChromeCookie reads the named cookie for host from Chrome's cookie database.
// An empty dbPath means the default profile.
func ChromeCookie(ctx context.Context, dbPath, host, name string) (string, error) {
	if dbPath == "" {
		p, err := defaultChromeCookieDB()
		if err != nil {
			return "", err
		}
		dbPath = p
	}
	return readChromeCookie(ctx, dbPath, host, name, chromeKey)
}

func defaultChromeCookieDB() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	var profile string
	switch runtime.GOOS {
	case "darwin":
		profile = filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default")
	case "linux":
		profile = filepath.Join(home, ".config", "google-chrome", "Default")
	default:
		return "", fmt.Errorf("reading Chrome cookies is not supported on %s", runtime.GOOS)
	}
	for _, p := range []string{
		filepath.Join(profile, "Network", "Cookies"),
		filepath.Join(profile, "Cookies"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no Chrome cookie database under %s", profile)
}

func readChromeCookie(ctx context.Context, dbPath, host, name string, key keyFunc) (string, error) {
	// Chrome holds a lock on the live database.
	tmp, err := copyToTemp(dbPath)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return "", fmt.Errorf("opening cookie database: %w", err)
	}
	defer db.Close()

	version := 0
	var raw string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&raw); err == nil {
		version, _ = strconv.Atoi(raw)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT host_key, value, encrypted_value FROM cookies WHERE name = ?`, name)
	if err != nil {
		return "", fmt.Errorf("querying cookies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hostKey, value string
		var encrypted []byte
		if err := rows.Scan(&hostKey, &value, &encrypted); err != nil {
			return "", fmt.Errorf("scanning cookie row: %w", err)
		}
		if !cookieMatchesHost(hostKey, host) {
			continue
		}
		if value != "" {
			return value, nil
		}
		if len(encrypted) == 0 {
			continue
		}
		return decryptCookie(ctx, encrypted, version >= hostHashVersion, key)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading cookie rows: %w", err)
	}
	return "", fmt.Errorf("no %s cookie for %s", name, host)
}

// cookieMatchesHost reports whether a cookie stored under hostKey is sent to host.
func cookieMatchesHost(hostKey, host string) bool {
	if hostKey == host {
		return true
	}
	domain := strings.TrimPrefix(hostKey, ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func decryptCookie(ctx context.Context, encrypted []byte, hostHash bool, key keyFunc) (string, error) {
	if len(encrypted) < 3 {
		return "", errors.New("encrypted cookie too short")
	}
	version := string(encrypted[:3])
	if version != "v10" && version != "v11" {
		return "", fmt.Errorf("unsupported cookie encryption %q", version)
	}
	data := encrypted[3:]
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", errors.New("encrypted cookie is not a whole number of blocks")
	}

	k, err := key(ctx, version)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}
	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, chromeIV).CryptBlocks(plain, data)

	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return "", err
	}
	if hostHash {
		if len(plain) < 32 {
			return "", errors.New("decrypted cookie shorter than its host hash")
		}
		plain = plain[32:]
	}
	return string(plain), nil
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, errors.New("empty plaintext")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errors.New("bad padding, wrong key?")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errors.New("bad padding, wrong key?")
		}
	}
	return b[:len(b)-n], nil
}

// deriveKey turns a Chrome Safe Storage password into the AES-128 key.
func deriveKey(password string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), chromeSalt, iterations, 16, sha1.New)
}

// chromeKey finds the platform password. macOS keeps it in the login
// keychain; Linux uses "peanuts" for v10 and the secret service for v11.
func chromeKey(ctx context.Context, version string) ([]byte, error) {
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.CommandContext(ctx, "security", "find-generic-password", "-w", "-s", "Chrome Safe Storage").Output()
		if err != nil {
			return nil, fmt.Errorf("reading Chrome Safe Storage from keychain: %w", err)
		}
		return deriveKey(strings.TrimSpace(string(out)), 1003), nil
	case "linux":
		if version == "v10" {
			return deriveKey("peanuts", 1), nil
		}
		out, err := exec.CommandContext(ctx, "secret-tool", "lookup", "application", "chrome").Output()
		if err != nil {
			return nil, fmt.Errorf("reading Chrome password from secret service: %w", err)
		}
		return deriveKey(strings.TrimSpace(string(out)), 1), nil
	}
	return nil, fmt.Errorf("reading Chrome cookies is not supported on %s", runtime.GOOS)
}

func copyToTemp(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening cookie database: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "synthetic-cookies-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("copying cookie database: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("copying cookie database: %w", err)
	}
	return dst.Name(), nil
}
