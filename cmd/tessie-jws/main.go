package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"

	"github.com/tessiemcp/tessie-mcp/pkg/cli"
)

const helpStr = `
usage: tessie-jws [OPTION...] sign [JSON_FILE]
			Generates a bearer token for the tessie-mcp HTTP transport from the claims in JSON_FILE.
       tessie-jws [OPTION...] verify [JWS_FILE]
			Verifies the signature and expiration of the token in JWS_FILE and prints its claims.

Tokens are signed with HS256 using the secret in $TESSIE_MCP_JWT_SECRET (or --secret-file), the
same secret the server is started with. Files default to stdin; an empty claims file is allowed.

The JSON_FILE may contain standard JWT (JSON Web Token) claims. The issued-at time ("iat") is always
overwritten, and the expiration ("exp") is set from --ttl unless the file provides one.`

var ErrNoSecret = errors.New("no signing secret (set $TESSIE_MCP_JWT_SECRET or --secret-file)")

func readStdinOrFile(filenamePosition int) ([]byte, error) {
	if pflag.NArg() <= filenamePosition {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(pflag.Arg(filenamePosition))
}

func parseClaims(jsonBytes []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if len(strings.TrimSpace(string(jsonBytes))) == 0 {
		return claims, nil
	}
	if err := json.Unmarshal(jsonBytes, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Sign returns an HS256 token for claims. A positive ttl sets "exp" if claims lack one.
func Sign(secret []byte, claims jwt.MapClaims, now time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	claims["iat"] = now.Unix()
	if _, ok := claims["exp"]; !ok && ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks token against secret the same way the server does and returns its claims.
func Verify(secret []byte, token string) (jwt.MapClaims, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func usage() {
	fmt.Println(helpStr)
	fmt.Println("")
	pflag.PrintDefaults()
}

func fail(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func main() {
	var (
		secretFile string
		ttl        time.Duration
	)
	pflag.Usage = usage
	pflag.StringVar(&secretFile, "secret-file", "", "Read the signing secret from `file` instead of $TESSIE_MCP_JWT_SECRET")
	pflag.DurationVar(&ttl, "ttl", 30*24*time.Hour, "Lifetime of signed tokens (0 for no expiration)")
	pflag.Parse()

	secret := []byte(os.Getenv(cli.EnvMCPJWTSecret))
	if secretFile != "" {
		raw, err := os.ReadFile(secretFile)
		if err != nil {
			fail("Failed to read secret: %s", err)
		}
		secret = []byte(strings.TrimSpace(string(raw)))
	}

	if pflag.NArg() == 0 {
		fail("Missing command (verify/sign)")
	}

	switch pflag.Arg(0) {
	case "sign":
		jsonBytes, err := readStdinOrFile(1)
		if err != nil {
			fail("Error reading JSON: %s", err)
		}
		claims, err := parseClaims(jsonBytes)
		if err != nil {
			fail("Error reading JSON: %s", err)
		}
		token, err := Sign(secret, claims, time.Now(), ttl)
		if err != nil {
			fail("Failed to create JWS: %s", err)
		}
		fmt.Println(token)
	case "verify":
		tokenBytes, err := readStdinOrFile(1)
		if err != nil {
			fail("Failed to read token: %s", err)
		}
		claims, err := Verify(secret, string(tokenBytes))
		if err != nil {
			fail("Invalid JWT: %s", err)
		}
		encoded, err := json.Marshal(claims)
		if err != nil {
			fail("Failed to encode claims as JSON: %s", err)
		}
		fmt.Printf("%s\n", encoded)
	default:
		fail("Unrecognized command")
	}
}
