package mqttconn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

func rsaKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa: %v", err)
	}
	return key, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}

func TestPasswordRS256(t *testing.T) {
	key, data := rsaKey(t)
	now := time.Now()

	pass, err := Password(data, "RS256", "farm-fleet", now)
	if err != nil {
		t.Fatalf("Password: %v", err)
	}

	claims := &jwt.StandardClaims{}
	tok, err := jwt.ParseWithClaims(pass, claims, func(*jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Audience != "farm-fleet" || claims.IssuedAt != now.Unix() || claims.ExpiresAt != now.Add(24*time.Hour).Unix() {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestPasswordES256(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate ec: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal ec: %v", err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})

	pass, err := Password(data, "ES256", "", time.Now())
	if err != nil {
		t.Fatalf("Password: %v", err)
	}
	if _, err := jwt.Parse(pass, func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
}

func TestPasswordErrors(t *testing.T) {
	_, data := rsaKey(t)
	if _, err := Password(data, "HS256", "", time.Now()); err == nil {
		t.Fatal("expected unknown algorithm error")
	}
	if _, err := Password([]byte("not a key"), "RS256", "", time.Now()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestClientOptions(t *testing.T) {
	if _, err := ClientOptions(Config{}); err == nil {
		t.Fatal("device id should be required")
	}

	opts, err := ClientOptions(Config{DeviceID: "drone-1"})
	if err != nil {
		t.Fatalf("ClientOptions: %v", err)
	}
	if opts.ClientID != "drone-1" || opts.Username != DefaultUsername || opts.Password != "" || opts.TLSConfig != nil {
		t.Fatalf("unexpected options %+v", opts)
	}
	if len(opts.Servers) != 1 || opts.Servers[0].String() != DefaultBroker {
		t.Fatalf("unexpected servers %v", opts.Servers)
	}

	_, data := rsaKey(t)
	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	opts, err = ClientOptions(Config{DeviceID: "drone-1", Broker: "ssl://broker.example:8883", PrivateKeyPath: path})
	if err != nil {
		t.Fatalf("ClientOptions: %v", err)
	}
	if opts.Password == "" || opts.TLSConfig == nil {
		t.Fatalf("expected password and TLS, got %+v", opts)
	}

	if _, err := ClientOptions(Config{DeviceID: "drone-1", PrivateKeyPath: filepath.Join(t.TempDir(), "missing.pem")}); err == nil {
		t.Fatal("expected missing key error")
	}
}
